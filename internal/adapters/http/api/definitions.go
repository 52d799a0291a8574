package api

import (
	"net/http"
	"strings"

	"github.com/okian/biosense/internal/domain/model"
)

// DefinitionDependencies resolves status presentation metadata.
type DefinitionDependencies interface {
	StateDefinition(s model.Status) (model.StateDefinition, error)
}

// DefinitionHandler handles status definition requests.
type DefinitionHandler struct {
	deps DefinitionDependencies
}

// NewDefinitionHandler creates a new definition handler.
func NewDefinitionHandler(deps DefinitionDependencies) *DefinitionHandler {
	return &DefinitionHandler{deps: deps}
}

// HandleGetDefinition handles GET /definitions/{status} requests.
func (h *DefinitionHandler) HandleGetDefinition(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_definition"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/definitions/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	def, err := h.deps.StateDefinition(model.Status(path))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	writeJSON(w, http.StatusOK, def)
}
