// Package types contains the wire shapes shared by the HTTP API and its
// clients.
package types

import (
	"errors"
	"strings"
	"time"

	"github.com/okian/biosense/internal/domain/model"
)

// SampleRequest is the body of POST /samples. Value is a number, a numeric
// string or a three element array for vector metrics. TS is RFC3339 and
// optional; the server time is used when it is empty.
type SampleRequest struct {
	DeviceID string `json:"device_id"`
	Metric   string `json:"metric"`
	Value    any    `json:"value"`
	TS       string `json:"ts,omitempty"`
}

// Validate checks the structural fields. Value is not range checked here;
// out of range values are defaulted by the engine.
func (r SampleRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.DeviceID) == "":
		return errors.New("missing device_id")
	case strings.TrimSpace(r.Metric) == "":
		return errors.New("missing metric")
	case r.Value == nil:
		return errors.New("missing value")
	}
	if r.TS != "" {
		if _, err := time.Parse(time.RFC3339Nano, r.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// Sample converts a validated request into a raw sample.
func (r SampleRequest) Sample() (model.RawSample, error) {
	if err := r.Validate(); err != nil {
		return model.RawSample{}, err
	}
	s := model.RawSample{
		DeviceID:   r.DeviceID,
		MetricType: model.MetricType(r.Metric),
		RawValue:   r.Value,
	}
	if r.TS != "" {
		ts, _ := time.Parse(time.RFC3339Nano, r.TS)
		s.CapturedAt = ts
	}
	return s, nil
}

// Ack is returned for accepted samples.
type Ack struct {
	Status string `json:"status"`
}

// DeviceList is returned by GET /devices.
type DeviceList struct {
	Count   int            `json:"count"`
	Devices []model.Device `json:"devices"`
}

// QualityReport is returned by GET /quality.
type QualityReport struct {
	Overall float64                      `json:"overall"`
	Metrics map[model.MetricType]float64 `json:"metrics"`
}
