package repository

import (
	"fmt"

	"github.com/okian/biosense/internal/domain/model"
)

// Sentinel kinds for device registry errors.
var (
	ErrNotFound     = fmt.Errorf("device not found: %w", model.ErrUnknownDevice)
	ErrDeviceExists = fmt.Errorf("device already registered: %w", model.ErrConfiguration)
	ErrInvalidID    = fmt.Errorf("device id is empty: %w", model.ErrConfiguration)
)
