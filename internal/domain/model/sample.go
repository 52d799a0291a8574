package model

import "time"

// RawSample is a reading as delivered by the driver layer. RawValue is
// whatever the driver produced: a number, a numeric string, a Vector3 or a
// three element slice.
type RawSample struct {
	DeviceID   string
	MetricType MetricType
	RawValue   any
	CapturedAt time.Time
}

// NormalizedSample is a sample after normalization, filtering and quality
// scoring.
type NormalizedSample struct {
	DeviceID      string     `json:"device_id"`
	MetricType    MetricType `json:"metric"`
	Value         Value      `json:"value"`
	FilteredValue Value      `json:"filtered_value"`
	Quality       float64    `json:"quality"`
	Defaulted     bool       `json:"defaulted"`
	ProcessedAt   time.Time  `json:"processed_at"`
}
