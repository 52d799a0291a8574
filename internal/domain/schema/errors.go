package schema

import (
	"fmt"

	"github.com/okian/biosense/internal/domain/model"
)

// Sentinel kinds for this package. Configuration kinds wrap
// model.ErrConfiguration and data kinds wrap model.ErrData.
var (
	ErrUnknownMetric   = fmt.Errorf("unknown metric type: %w", model.ErrConfiguration)
	ErrInvalidSchema   = fmt.Errorf("invalid metric schema: %w", model.ErrConfiguration)
	ErrDuplicateMetric = fmt.Errorf("metric type already registered: %w", model.ErrConfiguration)

	ErrUnparsable = fmt.Errorf("unparsable raw value: %w", model.ErrData)
	ErrOutOfRange = fmt.Errorf("raw value out of range: %w", model.ErrData)
)
