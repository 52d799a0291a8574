package service

import (
	"time"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueueSize sets the capacity of each device hand-off queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithFilterWindow sets how many samples the noise filter keeps per device
// and metric.
func WithFilterWindow(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.filterWindow = size
		}
	}
}

// WithHistorySize sets how many player states are retained.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size >= 2 {
			s.historySize = size
		}
	}
}

// WithDedupeSize enables duplicate sample suppression remembering up to
// size keys. Zero disables it.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
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
	return func(s *Service) {
		if m >= 0 {
			s.margin = m
		}
	}
}

// WithChangeThreshold sets the score delta that fires stateChanged without a
// status change.
func WithChangeThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 {
			s.changeThreshold = t
		}
	}
}

// WithWeights overrides the arousal weights per metric.
func WithWeights(weights map[model.MetricType]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.weights = weights
		}
	}
}

// WithClock sets the time source used for samples without a capture time
// and for quality queries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
