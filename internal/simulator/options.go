package simulator

import (
	"math/rand/v2"
	"time"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/pkg/logger"
)

// Option applies a configuration option to the Wearable.
type Option func(*Wearable)

// WithSeed makes the random walk reproducible.
func WithSeed(seed uint64) Option {
	return func(w *Wearable) {
		w.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithInterval sets the delay between sample batches.
func WithInterval(d time.Duration) Option {
	return func(w *Wearable) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithProfile overrides the random walk of one metric.
func WithProfile(m model.MetricType, p Profile) Option {
	return func(w *Wearable) {
		profiles := make(map[model.MetricType]Profile, len(w.profiles)+1)
		for k, v := range w.profiles {
			profiles[k] = v
		}
		profiles[m] = p
		w.profiles = profiles
	}
}

// WithGlitchRate makes a fraction of samples unparsable.
func WithGlitchRate(p float64) Option {
	return func(w *Wearable) {
		if p >= 0 && p <= 1 {
			w.glitchRate = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Wearable) {
		if l != nil {
			w.logger = l
		}
	}
}
