package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/pkg/metrics"
)

// entry guards one device. mu serializes Do and Remove for that device;
// the device value itself is read and written under MemoryStore.mu.
type entry struct {
	mu      sync.Mutex
	device  model.Device
	removed bool
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[string]*entry
	now     func() time.Time
}

// NewMemoryStore constructs an empty device registry.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		devices: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register implements Store.Register.
func (s *MemoryStore) Register(ctx context.Context, d model.Device) (model.Device, error) {
	if err := ctx.Err(); err != nil {
		return model.Device{}, fmt.Errorf("register device: %w", err)
	}
	if d.ID == "" {
		return model.Device{}, ErrInvalidID
	}
	d = d.Clone()
	if d.RegisteredAt.IsZero() {
		d.RegisteredAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[d.ID]; ok {
		return model.Device{}, fmt.Errorf("%w: %s", ErrDeviceExists, d.ID)
	}
	s.devices[d.ID] = &entry{device: d}
	s.updateMetricsLocked()
	return d.Clone(), nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.devices[id]
	if !ok {
		return model.Device{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.device.Clone(), nil
}

// Do implements Store.Do.
func (s *MemoryStore) Do(ctx context.Context, id string, fn func(d *model.Device) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("device %s: %w", id, err)
	}

	s.mu.RLock()
	d := e.device.Clone()
	s.mu.RUnlock()

	if err := fn(&d); err != nil {
		return err
	}
	// id and registration time are immutable
	d.ID = e.device.ID
	d.RegisteredAt = e.device.RegisteredAt

	s.mu.Lock()
	e.device = d
	s.updateMetricsLocked()
	s.mu.Unlock()
	return nil
}

// Remove implements Store.Remove.
func (s *MemoryStore) Remove(_ context.Context, id string) (model.Device, error) {
	e, err := s.lookup(id)
	if err != nil {
		return model.Device{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return model.Device{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.removed = true

	s.mu.Lock()
	delete(s.devices, id)
	s.updateMetricsLocked()
	d := e.device.Clone()
	s.mu.Unlock()
	return d, nil
}

// List implements Store.List.
func (s *MemoryStore) List(_ context.Context) []model.Device {
	return s.collect(func(model.Device) bool { return true })
}

// Connected implements Store.Connected.
func (s *MemoryStore) Connected(_ context.Context) []model.Device {
	return s.collect(func(d model.Device) bool { return d.Connected })
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

func (s *MemoryStore) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (s *MemoryStore) collect(keep func(model.Device) bool) []model.Device {
	s.mu.RLock()
	out := make([]model.Device, 0, len(s.devices))
	for _, e := range s.devices {
		if keep(e.device) {
			out = append(out, e.device.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// updateMetricsLocked refreshes registry gauges. Callers hold s.mu.
func (s *MemoryStore) updateMetricsLocked() {
	connected := 0
	for _, e := range s.devices {
		if e.device.Connected {
			connected++
		}
	}
	metrics.UpdateDevicesRegistered(len(s.devices))
	metrics.UpdateDevicesConnected(connected)
}
