// Package simulator provides a simulated wearable that stands in for the
// hardware driver layer. It produces bounded random-walk samples and hands
// them to a Sink at a fixed interval.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/pkg/logger"
)

const (
	defaultInterval = time.Second
	glitchValue     = "n/a"
)

// Sink receives samples from the simulated driver.
type Sink interface {
	OnRawSample(ctx context.Context, s model.RawSample) error
}

// Stats counts what a Wearable produced.
type Stats struct {
	Generated int64
	Delivered int64
	Rejected  int64
}

// Wearable is a simulated device. Output is deterministic for a given seed
// and sequence of tick times.
type Wearable struct {
	id         string
	adapter    model.AdapterDescriptor
	profiles   map[model.MetricType]Profile
	interval   time.Duration
	glitchRate float64
	logger     logger.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	values map[model.MetricType]model.Vector3

	generated atomic.Int64
	delivered atomic.Int64
	rejected  atomic.Int64
}

// New creates a Wearable for device id of the given family.
func New(id string, adapter model.AdapterDescriptor, opts ...Option) *Wearable {
	w := &Wearable{
		id:       id,
		adapter:  adapter,
		profiles: DefaultProfiles(),
		interval: defaultInterval,
		rng:      rand.New(rand.NewPCG(1, 2)),
		logger:   logger.Default().Named("simulator"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.values = make(map[model.MetricType]model.Vector3)
	for _, m := range adapter.Metrics {
		p := w.profiles[m]
		w.values[m] = model.Vector3{X: p.Baseline, Y: p.Baseline, Z: p.Baseline}
	}
	return w
}

// ID returns the device id.
func (w *Wearable) ID() string { return w.id }

// Adapter returns the device family descriptor.
func (w *Wearable) Adapter() model.AdapterDescriptor { return w.adapter }

// Stats returns the counters so far.
func (w *Wearable) Stats() Stats {
	return Stats{
		Generated: w.generated.Load(),
		Delivered: w.delivered.Load(),
		Rejected:  w.rejected.Load(),
	}
}

// Next advances every metric one step and returns a sample per declared
// metric captured at ts.
func (w *Wearable) Next(ts time.Time) []model.RawSample {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]model.RawSample, 0, len(w.adapter.Metrics))
	for _, m := range w.adapter.Metrics {
		p, ok := w.profiles[m]
		if !ok {
			continue
		}
		v := w.values[m]
		v.X = w.walk(p, v.X)
		if m == model.Motion {
			v.Y = w.walk(p, v.Y)
			v.Z = w.walk(p, v.Z)
		}
		w.values[m] = v

		var raw any = v.X
		if m == model.Motion {
			raw = v
		}
		if w.glitchRate > 0 && w.rng.Float64() < w.glitchRate {
			raw = glitchValue
		}
		out = append(out, model.RawSample{
			DeviceID:   w.id,
			MetricType: m,
			RawValue:   raw,
			CapturedAt: ts,
		})
	}
	w.generated.Add(int64(len(out)))
	return out
}

func (w *Wearable) walk(p Profile, x float64) float64 {
	x += (w.rng.Float64()*2-1)*p.Step + p.Drift
	return max(p.Min, min(p.Max, x))
}

// Run delivers samples to sink every interval until ctx ends. Rejections
// for backpressure are counted and skipped; an unknown device ends the run.
func (w *Wearable) Run(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info(ctx, "simulated wearable streaming",
		logger.DeviceID(w.id),
		logger.String("type", w.adapter.Type),
		logger.Duration("interval", w.interval),
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ts := <-ticker.C:
			if err := w.deliver(ctx, sink, ts); err != nil {
				return err
			}
		}
	}
}

func (w *Wearable) deliver(ctx context.Context, sink Sink, ts time.Time) error {
	for _, s := range w.Next(ts) {
		err := sink.OnRawSample(ctx, s)
		switch {
		case err == nil:
			w.delivered.Add(1)
		case errors.Is(err, model.ErrUnknownDevice):
			w.rejected.Add(1)
			return fmt.Errorf("wearable %s: %w", w.id, err)
		default:
			w.rejected.Add(1)
			w.logger.Debug(ctx, "sample rejected",
				logger.DeviceID(w.id),
				logger.Metric(string(s.MetricType)),
				logger.Error(err),
			)
		}
	}
	return nil
}
