package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/types"
)

// DeviceDependencies lists registered devices.
type DeviceDependencies interface {
	ConnectedDevices(ctx context.Context) []model.Device
	Devices(ctx context.Context) []model.Device
}

// DevicesHandler handles device listing requests.
type DevicesHandler struct {
	deps DeviceDependencies
}

// NewDevicesHandler creates a new devices handler.
func NewDevicesHandler(deps DeviceDependencies) *DevicesHandler {
	return &DevicesHandler{deps: deps}
}

// HandleGetDevices handles GET /devices requests. Connected devices are
// listed unless ?all=true is given.
func (h *DevicesHandler) HandleGetDevices(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_devices"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	all := false
	if v := r.URL.Query().Get("all"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		all = parsed
	}

	var devices []model.Device
	if all {
		devices = h.deps.Devices(r.Context())
	} else {
		devices = h.deps.ConnectedDevices(r.Context())
	}
	if devices == nil {
		devices = []model.Device{}
	}
	writeJSON(w, http.StatusOK, types.DeviceList{Count: len(devices), Devices: devices})
}
