package pubsub

import "github.com/okian/biosense/internal/domain/model"

// Kind names an event variant.
type Kind string

// Event kinds.
const (
	KindDeviceRegistered   Kind = "deviceRegistered"
	KindDeviceConnected    Kind = "deviceConnected"
	KindDeviceDisconnected Kind = "deviceDisconnected"
	KindDeviceRemoved      Kind = "deviceRemoved"
	KindStateChanged       Kind = "stateChanged"
	KindStateUpdated       Kind = "stateUpdated"
	KindDataProcessed      Kind = "dataProcessed"
)

// Kinds returns every event kind.
func Kinds() []Kind {
	return []Kind{
		KindDeviceRegistered,
		KindDeviceConnected,
		KindDeviceDisconnected,
		KindDeviceRemoved,
		KindStateChanged,
		KindStateUpdated,
		KindDataProcessed,
	}
}

// Event is implemented by every payload published on the Bus.
type Event interface {
	Kind() Kind
}

// DeviceRegistered is published after a device joins the registry.
type DeviceRegistered struct{ Device model.Device }

// DeviceConnected is published when a device transitions to connected.
type DeviceConnected struct{ Device model.Device }

// DeviceDisconnected is published when a device transitions to disconnected.
type DeviceDisconnected struct{ Device model.Device }

// DeviceRemoved is published after a device leaves the registry.
type DeviceRemoved struct{ Device model.Device }

// StateChanged is published when the status changes or the arousal score
// moved past the change threshold since the last StateChanged.
type StateChanged struct {
	Previous model.PlayerState
	Current  model.PlayerState
}

// StateUpdated is published on every recomputation.
type StateUpdated struct{ State model.PlayerState }

// DataProcessed is published for every sample that made it through the
// pipeline.
type DataProcessed struct{ Sample model.NormalizedSample }

func (DeviceRegistered) Kind() Kind   { return KindDeviceRegistered }
func (DeviceConnected) Kind() Kind    { return KindDeviceConnected }
func (DeviceDisconnected) Kind() Kind { return KindDeviceDisconnected }
func (DeviceRemoved) Kind() Kind      { return KindDeviceRemoved }
func (StateChanged) Kind() Kind       { return KindStateChanged }
func (StateUpdated) Kind() Kind       { return KindStateUpdated }
func (DataProcessed) Kind() Kind      { return KindDataProcessed }
