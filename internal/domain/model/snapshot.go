package model

import "time"

// Reading is a scalar snapshot field; Known is false until some device has
// supplied the metric.
type Reading struct {
	Value     float64   `json:"value"`
	Known     bool      `json:"known"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`
}

// MotionReading is the vector counterpart of Reading.
type MotionReading struct {
	Value     Vector3   `json:"value"`
	Known     bool      `json:"known"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`
}

// Snapshot holds the last known good value per metric across all devices.
type Snapshot struct {
	Timestamp    time.Time              `json:"timestamp"`
	HeartRate    Reading                `json:"heart_rate"`
	GSR          Reading                `json:"gsr"`
	Motion       MotionReading          `json:"motion"`
	EEG          Reading                `json:"eeg"`
	Temperature  Reading                `json:"temperature"`
	BatteryLevel Reading                `json:"battery_level"`
	Custom       map[MetricType]Reading `json:"custom,omitempty"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Custom != nil {
		c.Custom = make(map[MetricType]Reading, len(s.Custom))
		for k, v := range s.Custom {
			c.Custom[k] = v
		}
	}
	return c
}

// Known reports whether metric m has a value in the snapshot.
func (s Snapshot) Known(m MetricType) bool {
	switch m {
	case HeartRate:
		return s.HeartRate.Known
	case GSR:
		return s.GSR.Known
	case Motion:
		return s.Motion.Known
	case EEG:
		return s.EEG.Known
	case Temperature:
		return s.Temperature.Known
	case Battery:
		return s.BatteryLevel.Known
	default:
		r, ok := s.Custom[m]
		return ok && r.Known
	}
}
