package service

import (
	"context"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/status"
)

// CurrentState returns the latest player state. Before any sample it is
// disconnected with zero score and confidence.
func (s *Service) CurrentState(_ context.Context) model.PlayerState {
	return s.classifier.Current()
}

// History returns the retained player states, oldest first.
func (s *Service) History(_ context.Context) []model.PlayerState {
	return s.classifier.History()
}

// Snapshot returns the aggregated latest value per metric.
func (s *Service) Snapshot(_ context.Context) model.Snapshot {
	return s.aggregator.Snapshot()
}

// OverallDataQuality returns the mean quality of every observed metric as of
// now, 0 when nothing was observed.
func (s *Service) OverallDataQuality(_ context.Context) float64 {
	return s.quality.Overall(s.now())
}

// MetricQuality returns the quality of one metric as of now. ok is false for
// metrics never observed.
func (s *Service) MetricQuality(_ context.Context, m model.MetricType) (float64, bool) {
	return s.quality.Quality(m, s.now())
}

// QualityReport returns the current quality of every observed metric.
func (s *Service) QualityReport(_ context.Context) map[model.MetricType]float64 {
	now := s.now()
	out := make(map[model.MetricType]float64)
	for _, m := range s.quality.Observed() {
		if q, ok := s.quality.Quality(m, now); ok {
			out[m] = q
		}
	}
	return out
}

// StateDefinition returns the presentation metadata for st.
func (s *Service) StateDefinition(st model.Status) (model.StateDefinition, error) {
	return status.Definition(st)
}

// StateDefinitions returns the metadata of every status.
func (s *Service) StateDefinitions() []model.StateDefinition {
	return status.Definitions()
}

// Metrics returns the registered metric types.
func (s *Service) Metrics() []model.MetricType {
	return s.schemas.Types()
}
