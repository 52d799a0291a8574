package service

import (
	"errors"
	"fmt"

	workerpool "github.com/okian/biosense/internal/adapters/mq/worker"
	"github.com/okian/biosense/internal/domain/model"
)

// Sentinel kinds for engine errors. Configuration kinds wrap
// model.ErrConfiguration; ErrBackpressure wraps the worker pool's kind.
var (
	ErrUnknownAdapter    = fmt.Errorf("unknown device type: %w", model.ErrConfiguration)
	ErrInvalidAdapter    = fmt.Errorf("invalid device adapter: %w", model.ErrConfiguration)
	ErrUnsupportedMetric = fmt.Errorf("metric not declared by device: %w", model.ErrConfiguration)

	ErrDeviceNotConnected = errors.New("device not connected")
	ErrBackpressure       = fmt.Errorf("device queue full: %w", workerpool.ErrBackpressure)
	ErrNotStarted         = errors.New("engine not started")
	ErrStopped            = errors.New("engine stopped")
)
