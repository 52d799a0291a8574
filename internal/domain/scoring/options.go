package scoring

import "github.com/okian/biosense/internal/domain/model"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides per-metric weights. Negative weights are ignored and
// metrics without a component function are skipped.
func WithWeights(weights map[model.MetricType]float64) Option {
	return func(s *Scorer) {
		for m, w := range weights {
			if _, ok := components[m]; !ok || w < 0 {
				continue
			}
			s.weights[m] = w
		}
	}
}

// WithHeartRateCurve sets the logistic curve applied to the normalized heart
// rate.
func WithHeartRateCurve(center, steepness float64) Option {
	return func(s *Scorer) {
		if steepness > 0 {
			s.hrCenter = center
			s.hrSteepness = steepness
		}
	}
}
