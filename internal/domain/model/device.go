package model

import (
	"sort"
	"time"
)

// DeviceAdapter describes a family of devices the driver layer can talk to.
type DeviceAdapter interface {
	// Name is the device type used at registration, e.g. "wristband".
	Name() string
	// Capabilities lists the metrics devices of this family emit.
	Capabilities() []MetricType
}

// AdapterDescriptor is a static DeviceAdapter.
type AdapterDescriptor struct {
	Type    string
	Metrics []MetricType
}

// Name implements DeviceAdapter.
func (a AdapterDescriptor) Name() string { return a.Type }

// Capabilities implements DeviceAdapter.
func (a AdapterDescriptor) Capabilities() []MetricType {
	out := make([]MetricType, len(a.Metrics))
	copy(out, a.Metrics)
	return out
}

// DeviceInfo carries driver-supplied details used when registering a device.
type DeviceInfo struct {
	// ID is optional; one is generated when empty.
	ID   string
	Name string
}

// Device is a known sensor source.
type Device struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name,omitempty"`
	Type         string                 `json:"type"`
	Capabilities map[MetricType]bool    `json:"capabilities"`
	Connected    bool                   `json:"connected"`
	RegisteredAt time.Time              `json:"registered_at"`
	LastSeenAt   time.Time              `json:"last_seen_at"`
	Quality      map[MetricType]float64 `json:"quality"`
}

// Supports reports whether the device declared metric m.
func (d Device) Supports(m MetricType) bool {
	return d.Capabilities[m]
}

// Metrics returns the declared capabilities sorted by name.
func (d Device) Metrics() []MetricType {
	out := make([]MetricType, 0, len(d.Capabilities))
	for m := range d.Capabilities {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy safe to hand to other goroutines.
func (d Device) Clone() Device {
	c := d
	c.Capabilities = make(map[MetricType]bool, len(d.Capabilities))
	for k, v := range d.Capabilities {
		c.Capabilities[k] = v
	}
	c.Quality = make(map[MetricType]float64, len(d.Quality))
	for k, v := range d.Quality {
		c.Quality[k] = v
	}
	return c
}
