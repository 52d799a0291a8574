package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/okian/biosense/internal/adapters/mq/pubsub"
	workerpool "github.com/okian/biosense/internal/adapters/mq/worker"
	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/schema"
	"github.com/okian/biosense/pkg/logger"
)

// RegisterMetric adds a custom metric schema at runtime.
func (s *Service) RegisterMetric(sch schema.Schema) error {
	if err := s.schemas.Register(sch); err != nil {
		s.logger.Warn(context.Background(), "metric registration rejected",
			logger.Metric(string(sch.Type)),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// RegisterAdapter makes a device family available to RegisterDevice. Every
// declared capability must be a registered metric type. Registering the
// same name again replaces the descriptor for future registrations.
func (s *Service) RegisterAdapter(a model.DeviceAdapter) error {
	if a == nil {
		return fmt.Errorf("%w: nil adapter", ErrInvalidAdapter)
	}
	name := a.Name()
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAdapter)
	}
	caps := a.Capabilities()
	if len(caps) == 0 {
		return fmt.Errorf("%w: %s declares no capabilities", ErrInvalidAdapter, name)
	}
	for _, m := range caps {
		if _, err := s.schemas.Lookup(m); err != nil {
			return fmt.Errorf("adapter %s: %w", name, err)
		}
	}

	s.mu.Lock()
	s.adapters[name] = a
	s.mu.Unlock()
	s.logger.Debug(context.Background(), "adapter registered",
		logger.String("type", name),
		logger.Int("capabilities", len(caps)),
	)
	return nil
}

// RegisterDevice creates a disconnected device of the given type. A device
// id is generated when info.ID is empty.
func (s *Service) RegisterDevice(ctx context.Context, deviceType string, info model.DeviceInfo) (model.Device, error) {
	s.mu.RLock()
	a, ok := s.adapters[deviceType]
	s.mu.RUnlock()
	if !ok {
		s.logger.Warn(ctx, "unknown device type", logger.String("type", deviceType))
		return model.Device{}, fmt.Errorf("%w: %q", ErrUnknownAdapter, deviceType)
	}

	id := info.ID
	if id == "" {
		id = uuid.NewString()
	}
	caps := make(map[model.MetricType]bool)
	for _, m := range a.Capabilities() {
		caps[m] = true
	}

	d, err := s.devices.Register(ctx, model.Device{
		ID:           id,
		Name:         info.Name,
		Type:         deviceType,
		Capabilities: caps,
	})
	if err != nil {
		return model.Device{}, err
	}

	if err := s.pool.Add(id); err != nil {
		if !errors.Is(err, workerpool.ErrStopped) {
			_, _ = s.devices.Remove(ctx, id)
			return model.Device{}, fmt.Errorf("device %s: %w", id, err)
		}
		// the synchronous path still serves devices registered after Stop
		s.logger.Debug(ctx, "no worker lane for device", logger.DeviceID(id))
	}

	s.logger.Info(ctx, "device registered",
		logger.DeviceID(id),
		logger.String("type", deviceType),
	)
	s.bus.Publish(pubsub.DeviceRegistered{Device: d.Clone()})
	return d, nil
}

// Connect marks the device reachable. Connecting a connected device is a
// no-op and publishes nothing.
func (s *Service) Connect(ctx context.Context, id string) error {
	return s.setConnected(ctx, id, true)
}

// Disconnect marks the device unreachable. Its last values and qualities are
// kept and age out through the staleness penalty. Samples already queued for
// the device are dropped when their turn comes.
func (s *Service) Disconnect(ctx context.Context, id string) error {
	return s.setConnected(ctx, id, false)
}

func (s *Service) setConnected(ctx context.Context, id string, connected bool) error {
	var (
		changed bool
		device  model.Device
	)
	err := s.devices.Do(ctx, id, func(d *model.Device) error {
		changed = d.Connected != connected
		d.Connected = connected
		device = d.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if connected {
		s.logger.Info(ctx, "device connected", logger.DeviceID(id))
		s.bus.Publish(pubsub.DeviceConnected{Device: device})
	} else {
		s.logger.Info(ctx, "device disconnected", logger.DeviceID(id))
		s.bus.Publish(pubsub.DeviceDisconnected{Device: device})
	}
	return nil
}

// RemoveDevice deletes the device and its filter buffers. Its queued samples
// are dropped. The aggregated snapshot keeps the last values, whose quality
// decays with time. RemoveDevice must not be called from an event handler
// running on that device's worker.
func (s *Service) RemoveDevice(ctx context.Context, id string) error {
	d, err := s.devices.Remove(ctx, id)
	if err != nil {
		return err
	}
	if err := s.pool.Remove(ctx, id); err != nil && !errors.Is(err, workerpool.ErrUnknownLane) {
		s.logger.Warn(ctx, "device worker did not stop cleanly",
			logger.DeviceID(id),
			logger.Error(err),
		)
	}
	s.filter.Reset(id)

	s.logger.Info(ctx, "device removed", logger.DeviceID(id))
	s.bus.Publish(pubsub.DeviceRemoved{Device: d})
	return nil
}

// Device returns one registered device.
func (s *Service) Device(ctx context.Context, id string) (model.Device, error) {
	return s.devices.Get(ctx, id)
}

// Devices returns all registered devices.
func (s *Service) Devices(ctx context.Context) []model.Device {
	return s.devices.List(ctx)
}

// ConnectedDevices returns the devices currently connected.
func (s *Service) ConnectedDevices(ctx context.Context) []model.Device {
	return s.devices.Connected(ctx)
}

// Adapters returns the registered device type names, sorted.
func (s *Service) Adapters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.adapters))
	for name := range s.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
