package status

import "github.com/okian/biosense/internal/domain/scoring"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithScorer sets the arousal scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(c *Classifier) {
		if s != nil {
			c.scorer = s
		}
	}
}

// WithHistorySize sets how many past states are retained.
func WithHistorySize(n int) Option {
	return func(c *Classifier) {
		if n >= 2 {
			c.historySize = n
		}
	}
}

// WithTrendWindow sets how many recent states the trend looks at.
func WithTrendWindow(n int) Option {
	return func(c *Classifier) {
		if n >= 2 {
			c.trendWindow = n
		}
	}
}

// WithHysteresisMargin sets how far past a band edge the score must move
// before the status leaves its current band. With a positive margin the
// status depends on the previous status as well as the score: a score
// within margin of an edge keeps the current band, so Band(score) may name
// the neighbour. A margin of 0 makes the status a pure function of the
// score, at the cost of flapping around band edges.
func WithHysteresisMargin(m float64) Option {
	return func(c *Classifier) {
		if m >= 0 {
			c.margin = m
		}
	}
}

// WithChangeThreshold sets the score movement that counts as a change even
// when the status stays the same.
func WithChangeThreshold(t float64) Option {
	return func(c *Classifier) {
		if t >= 0 {
			c.changeThreshold = t
		}
	}
}
