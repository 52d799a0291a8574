// Package repository holds the device registry.
package repository

import (
	"context"

	"github.com/okian/biosense/internal/domain/model"
)

// Store provides read/write access to registered devices.
type Store interface {
	// Register adds a device. Returns ErrDeviceExists if the id is taken.
	Register(ctx context.Context, d model.Device) (model.Device, error)

	// Get returns a copy of the device or ErrNotFound.
	Get(ctx context.Context, id string) (model.Device, error)

	// Do runs fn with exclusive access to one device. fn receives a copy;
	// the copy is committed only when fn returns nil. Calls for the same
	// device are serialized, calls for different devices run in parallel.
	Do(ctx context.Context, id string, fn func(d *model.Device) error) error

	// Remove deletes the device, waiting for any in-flight Do on it.
	Remove(ctx context.Context, id string) (model.Device, error)

	// List returns all devices ordered by registration time.
	List(ctx context.Context) []model.Device

	// Connected returns connected devices ordered by registration time.
	Connected(ctx context.Context) []model.Device

	// Count returns the number of registered devices.
	Count(ctx context.Context) int
}
