package status

import (
	"fmt"

	"github.com/okian/biosense/internal/domain/model"
)

// ErrUnknownStatus is returned when a definition is requested for a status
// that does not exist.
var ErrUnknownStatus = fmt.Errorf("unknown status: %w", model.ErrConfiguration)
