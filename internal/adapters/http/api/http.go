// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine.
type Dependencies interface {
	SampleDependencies
	StateDependencies
	DeviceDependencies
	DefinitionDependencies
}

// Server wires HTTP routes for the status API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	samplesHandler    *SamplesHandler
	stateHandler      *StateHandler
	devicesHandler    *DevicesHandler
	definitionHandler *DefinitionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		samplesHandler:    NewSamplesHandler(deps),
		stateHandler:      NewStateHandler(deps),
		devicesHandler:    NewDevicesHandler(deps),
		definitionHandler: NewDefinitionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/samples", MetricsMiddleware(s.samplesHandler.HandlePostSample, "samples"))
	mux.HandleFunc("/state", MetricsMiddleware(s.stateHandler.HandleGetState, "state"))
	mux.HandleFunc("/quality", MetricsMiddleware(s.stateHandler.HandleGetQuality, "quality"))
	mux.HandleFunc("/devices", MetricsMiddleware(s.devicesHandler.HandleGetDevices, "devices"))
	mux.HandleFunc("/definitions/", MetricsMiddleware(s.definitionHandler.HandleGetDefinition, "definitions"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
