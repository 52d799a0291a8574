package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	workerpool "github.com/okian/biosense/internal/adapters/mq/worker"
	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/types"
)

const maxSampleBody = 1 << 16

// SampleDependencies hands samples to the engine without blocking.
type SampleDependencies interface {
	OnRawSample(ctx context.Context, s model.RawSample) error
}

// SamplesHandler bridges HTTP posts to the driver boundary.
type SamplesHandler struct {
	deps SampleDependencies
}

// NewSamplesHandler creates a new samples handler.
func NewSamplesHandler(deps SampleDependencies) *SamplesHandler {
	return &SamplesHandler{deps: deps}
}

// HandlePostSample handles POST /samples requests.
func (h *SamplesHandler) HandlePostSample(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_sample"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.SampleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSampleBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sample, err := req.Sample()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	err = h.deps.OnRawSample(r.Context(), sample)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, types.Ack{Status: "accepted"})
	case errors.Is(err, model.ErrUnknownDevice):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, workerpool.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	default:
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	}
}
