// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/biosense/internal/domain/model"
)

// weightKeys maps configuration keys to metric types.
var weightKeys = map[string]model.MetricType{
	"heart_rate": model.HeartRate,
	"gsr":        model.GSR,
	"motion":     model.Motion,
	"eeg":        model.EEG,
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds each device's raw sample queue.
	QueueSize int `koanf:"queue_size"`

	// FilterWindow is the number of samples kept per device and metric for
	// noise filtering.
	FilterWindow int `koanf:"filter_window"`

	// HistorySize is the number of past player states retained.
	HistorySize int `koanf:"history_size"`

	// DedupeSize sets the size of the duplicate sample cache. Zero disables
	// duplicate detection.
	DedupeSize int `koanf:"dedupe_size"`

	// HysteresisMargin is how far past a band edge the arousal score must
	// move before the status changes.
	HysteresisMargin float64 `koanf:"hysteresis_margin"`

	// ChangeThreshold is the score movement that publishes a state change
	// even when the status holds.
	ChangeThreshold float64 `koanf:"change_threshold"`

	// Weights maps heart_rate, gsr, motion and eeg to arousal weights.
	Weights map[string]float64 `koanf:"weights"`

	// Simulate starts simulated wearables feeding the engine.
	Simulate bool `koanf:"simulate"`

	// SimulateDevices is the number of simulated wearables.
	SimulateDevices int `koanf:"simulate_devices"`

	// SimulateIntervalMS is the sampling period of simulated wearables.
	SimulateIntervalMS int `koanf:"simulate_interval_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        256,
		FilterWindow:     10,
		HistorySize:      50,
		DedupeSize:       4096,
		HysteresisMargin: 0.05,
		ChangeThreshold:  0.1,
		Weights: map[string]float64{
			"heart_rate": 0.4,
			"gsr":        0.3,
			"motion":     0.2,
			"eeg":        0.1,
		},
		Simulate:           false,
		SimulateDevices:    1,
		SimulateIntervalMS: 1000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.FilterWindow < 1:
		return fmt.Errorf("%w: filter_window must be positive", ErrInvalidConfig)
	case c.HistorySize < 2:
		return fmt.Errorf("%w: history_size must be at least 2", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.HysteresisMargin < 0 || c.ChangeThreshold < 0:
		return fmt.Errorf("%w: hysteresis_margin and change_threshold must not be negative", ErrInvalidConfig)
	case c.Simulate && (c.SimulateDevices < 1 || c.SimulateIntervalMS < 1):
		return fmt.Errorf("%w: simulate_devices and simulate_interval_ms must be positive", ErrInvalidConfig)
	}
	if _, err := c.MetricWeights(); err != nil {
		return err
	}
	return nil
}

// MetricWeights converts Weights to metric types.
func (c *Config) MetricWeights() (map[model.MetricType]float64, error) {
	out := make(map[model.MetricType]float64, len(c.Weights))
	keys := make([]string, 0, len(c.Weights))
	for k := range c.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m, ok := weightKeys[strings.ToLower(k)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weight %q", ErrInvalidConfig, k)
		}
		w := c.Weights[k]
		if w < 0 {
			return nil, fmt.Errorf("%w: weight %q must not be negative", ErrInvalidConfig, k)
		}
		out[m] = w
	}
	return out, nil
}
