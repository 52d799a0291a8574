package status

import (
	"math"

	"github.com/okian/biosense/internal/domain/model"
)

// band is a half-open score interval [lower, upper).
type band struct {
	status model.Status
	lower  float64
	upper  float64
}

// bands are ordered by ascending arousal. The last band is closed at the top.
var bands = []band{
	{model.StatusRelaxed, math.Inf(-1), 0.3},
	{model.StatusNormal, 0.3, 0.5},
	{model.StatusFocused, 0.5, 0.7},
	{model.StatusAnxious, 0.7, 0.8},
	{model.StatusOverstimulated, 0.8, math.Inf(1)},
}

// Band maps a score to its status without hysteresis.
func Band(score float64) model.Status {
	for _, b := range bands {
		if score < b.upper {
			return b.status
		}
	}
	return model.StatusOverstimulated
}

func rank(s model.Status) int {
	for i, b := range bands {
		if b.status == s {
			return i
		}
	}
	return -1
}

// withHysteresis returns the status for score given the current one. Leaving
// the current band requires clearing its edge by margin.
func withHysteresis(current model.Status, score, margin float64) model.Status {
	i := rank(current)
	if i < 0 {
		return Band(score)
	}
	b := bands[i]
	switch {
	case score >= b.upper+margin:
		return Band(score)
	case score < b.lower-margin:
		return Band(score)
	default:
		return current
	}
}
