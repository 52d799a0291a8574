package status

import (
	"fmt"

	"github.com/okian/biosense/internal/domain/model"
)

var definitions = map[model.Status]model.StateDefinition{
	model.StatusDisconnected:   {Status: model.StatusDisconnected, Label: "Disconnected", ColorHint: "#808080", NominalArousal: 0, NominalConfidence: 0},
	model.StatusRelaxed:        {Status: model.StatusRelaxed, Label: "Relaxed", ColorHint: "#4CAF50", NominalArousal: 0.2, NominalConfidence: 0.8},
	model.StatusNormal:         {Status: model.StatusNormal, Label: "Normal", ColorHint: "#2196F3", NominalArousal: 0.4, NominalConfidence: 0.9},
	model.StatusFocused:        {Status: model.StatusFocused, Label: "Focused", ColorHint: "#9C27B0", NominalArousal: 0.6, NominalConfidence: 0.85},
	model.StatusAnxious:        {Status: model.StatusAnxious, Label: "Anxious", ColorHint: "#FF9800", NominalArousal: 0.75, NominalConfidence: 0.75},
	model.StatusOverstimulated: {Status: model.StatusOverstimulated, Label: "Overstimulated", ColorHint: "#F44336", NominalArousal: 0.9, NominalConfidence: 0.7},
}

// Definition returns the presentation metadata for s.
func Definition(s model.Status) (model.StateDefinition, error) {
	d, ok := definitions[s]
	if !ok {
		return model.StateDefinition{}, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return d, nil
}

// Definitions returns every definition in status order.
func Definitions() []model.StateDefinition {
	out := make([]model.StateDefinition, 0, len(definitions))
	for _, s := range model.Statuses() {
		out = append(out, definitions[s])
	}
	return out
}
