package model

import "time"

// Status is the discrete physiological state of the wearer.
type Status string

// The six statuses, in ascending arousal order after Disconnected.
const (
	StatusDisconnected   Status = "disconnected"
	StatusRelaxed        Status = "relaxed"
	StatusNormal         Status = "normal"
	StatusFocused        Status = "focused"
	StatusAnxious        Status = "anxious"
	StatusOverstimulated Status = "overstimulated"
)

// Statuses returns every status value.
func Statuses() []Status {
	return []Status{
		StatusDisconnected,
		StatusRelaxed,
		StatusNormal,
		StatusFocused,
		StatusAnxious,
		StatusOverstimulated,
	}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

// Elevated reports whether s is one of the high-arousal statuses.
func (s Status) Elevated() bool {
	return s == StatusAnxious || s == StatusOverstimulated
}

// Trend summarises recent arousal movement.
type Trend string

// Trend values.
const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// PlayerState is the classifier output.
type PlayerState struct {
	Status       Status    `json:"status"`
	ArousalScore float64   `json:"arousal_score"`
	Confidence   float64   `json:"confidence"`
	Metrics      Snapshot  `json:"metrics"`
	Trend        Trend     `json:"trend"`
	LastUpdate   time.Time `json:"last_update"`
}

// InitialState is the state before any sample was classified.
func InitialState() PlayerState {
	return PlayerState{
		Status: StatusDisconnected,
		Trend:  TrendStable,
	}
}

// Clone returns a deep copy.
func (p PlayerState) Clone() PlayerState {
	c := p
	c.Metrics = p.Metrics.Clone()
	return c
}

// StateDefinition is static presentation metadata for a status.
type StateDefinition struct {
	Status            Status  `json:"status"`
	Label             string  `json:"label"`
	ColorHint         string  `json:"color_hint"`
	NominalArousal    float64 `json:"nominal_arousal"`
	NominalConfidence float64 `json:"nominal_confidence"`
}
