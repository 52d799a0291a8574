package api

import (
	"context"
	"net/http"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/types"
)

// StateDependencies exposes the classifier output and data quality.
type StateDependencies interface {
	CurrentState(ctx context.Context) model.PlayerState
	OverallDataQuality(ctx context.Context) float64
	QualityReport(ctx context.Context) map[model.MetricType]float64
}

// StateHandler serves the player state and quality reads.
type StateHandler struct {
	deps StateDependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleGetState handles GET /state requests.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CurrentState(r.Context()))
}

// HandleGetQuality handles GET /quality requests.
func (h *StateHandler) HandleGetQuality(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	writeJSON(w, http.StatusOK, types.QualityReport{
		Overall: h.deps.OverallDataQuality(ctx),
		Metrics: h.deps.QualityReport(ctx),
	})
}
