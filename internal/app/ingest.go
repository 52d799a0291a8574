package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/biosense/internal/adapters/mq/pubsub"
	workerpool "github.com/okian/biosense/internal/adapters/mq/worker"
	"github.com/okian/biosense/internal/domain/dedupe"
	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/pkg/logger"
	"github.com/okian/biosense/pkg/metrics"
)

// Drop reasons recorded in metrics.
const (
	dropUnknownDevice = "unknown_device"
	dropDisconnected  = "not_connected"
	dropUnsupported   = "unsupported_metric"
	dropBackpressure  = "backpressure"
	dropOther         = "error"
)

// Ingest runs one raw reading through the pipeline on the calling
// goroutine: normalize, filter, quality, aggregate, classify and publish.
// Malformed or out of range values are replaced by the schema default and
// never returned as errors. A zero ts means now.
//
// Ingest fails for unknown devices (model.ErrUnknownDevice), disconnected
// devices (ErrDeviceNotConnected) and metrics the device did not declare
// (ErrUnsupportedMetric).
func (s *Service) Ingest(ctx context.Context, deviceID string, metric model.MetricType, raw any, ts time.Time) error {
	sample := model.RawSample{
		DeviceID:   deviceID,
		MetricType: metric,
		RawValue:   raw,
		CapturedAt: ts,
	}
	key, seen := s.seen(ctx, sample)
	if seen {
		return nil
	}
	if err := s.ingest(ctx, sample); err != nil {
		s.forget(ctx, key)
		metrics.RecordSampleDropped(dropReason(err))
		return err
	}
	return nil
}

// OnRawSample hands a sample to the device's worker without blocking. It
// returns model.ErrUnknownDevice for devices without a lane and
// ErrBackpressure when the device queue is full.
func (s *Service) OnRawSample(ctx context.Context, sample model.RawSample) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	key, seen := s.seen(ctx, sample)
	if seen {
		return nil
	}

	err := s.pool.Submit(ctx, sample)
	if err == nil {
		return nil
	}

	s.forget(ctx, key)
	switch {
	case errors.Is(err, workerpool.ErrBackpressure):
		metrics.RecordSampleDropped(dropBackpressure)
		return fmt.Errorf("%w: %s", ErrBackpressure, sample.DeviceID)
	case errors.Is(err, workerpool.ErrUnknownLane):
		metrics.RecordSampleDropped(dropUnknownDevice)
		return fmt.Errorf("%w: %s", model.ErrUnknownDevice, sample.DeviceID)
	case errors.Is(err, workerpool.ErrStopped):
		return ErrStopped
	default:
		return err
	}
}

// process is the worker path. Samples for devices that were disconnected or
// removed after queueing are dropped silently. A dropped sample is forgotten
// so the driver can deliver it again.
func (s *Service) process(ctx context.Context, sample model.RawSample) error {
	err := s.ingest(ctx, sample)
	if err == nil {
		return nil
	}
	s.forget(ctx, s.keyOf(sample))
	metrics.RecordSampleDropped(dropReason(err))
	if errors.Is(err, ErrDeviceNotConnected) || errors.Is(err, model.ErrUnknownDevice) {
		s.logger.Debug(ctx, "dropping queued sample",
			logger.DeviceID(sample.DeviceID),
			logger.Metric(string(sample.MetricType)),
			logger.Error(err),
		)
		return nil
	}
	return err
}

// ingest is the shared pipeline. The device entry is held for the duration,
// so connect, disconnect and remove take effect between samples.
func (s *Service) ingest(ctx context.Context, raw model.RawSample) error {
	start := time.Now()
	ts := raw.CapturedAt
	if ts.IsZero() {
		ts = s.now()
	}

	s.pipelineMu.Lock()
	defer s.pipelineMu.Unlock()

	var (
		sample  model.NormalizedSample
		outcome statusOutcome
	)
	err := s.devices.Do(ctx, raw.DeviceID, func(d *model.Device) error {
		if !d.Connected {
			return fmt.Errorf("%w: %s", ErrDeviceNotConnected, d.ID)
		}
		if !d.Supports(raw.MetricType) {
			return fmt.Errorf("%w: %s on %s", ErrUnsupportedMetric, raw.MetricType, d.ID)
		}
		sch, err := s.schemas.Lookup(raw.MetricType)
		if err != nil {
			return err
		}

		value, dataErr := sch.Normalize(raw.RawValue)
		if dataErr != nil {
			metrics.RecordSampleDefaulted(string(raw.MetricType))
			s.logger.Debug(ctx, "raw value replaced",
				logger.DeviceID(d.ID),
				logger.Metric(string(raw.MetricType)),
				logger.Error(dataErr),
			)
		}
		filtered := s.filter.Apply(d.ID, raw.MetricType, value, sch.NoiseThreshold)
		q := s.quality.Update(sch, filtered, ts)

		d.Quality[raw.MetricType] = q
		if ts.After(d.LastSeenAt) {
			d.LastSeenAt = ts
		}

		sample = model.NormalizedSample{
			DeviceID:      d.ID,
			MetricType:    raw.MetricType,
			Value:         value,
			FilteredValue: filtered,
			Quality:       q,
			Defaulted:     dataErr != nil,
			ProcessedAt:   s.now(),
		}
		outcome = s.reclassify(d.ID, raw.MetricType, filtered, ts)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordSampleIngested(string(raw.MetricType))
	metrics.UpdateMetricQuality(string(raw.MetricType), sample.Quality)

	s.bus.Publish(pubsub.DataProcessed{Sample: sample})
	s.bus.Publish(pubsub.StateUpdated{State: outcome.state.Clone()})
	if outcome.changed {
		s.bus.Publish(pubsub.StateChanged{Previous: outcome.previous, Current: outcome.state.Clone()})
	}
	metrics.RecordIngestLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

type statusOutcome struct {
	state    model.PlayerState
	previous model.PlayerState
	changed  bool
}

// reclassify writes the filtered value into the snapshot and recomputes the
// player state. Callers hold pipelineMu.
func (s *Service) reclassify(deviceID string, m model.MetricType, v model.Value, ts time.Time) statusOutcome {
	start := time.Now()
	snap := s.aggregator.Apply(deviceID, m, v, ts)
	overall := s.quality.Overall(ts)
	out := s.classifier.Classify(snap, overall, ts)

	metrics.RecordEvaluation()
	metrics.UpdateDataQuality(overall)
	metrics.UpdateArousalScore(out.State.ArousalScore)
	metrics.UpdateConfidence(out.State.Confidence)
	if out.Changed && out.State.Status != out.Previous.Status {
		metrics.RecordStatusChange(string(out.State.Status))
	}
	metrics.RecordClassificationLatency(float64(time.Since(start).Microseconds()) / 1000)

	return statusOutcome{state: out.State, previous: out.Previous, changed: out.Changed}
}

// seen reports whether sample was already delivered. Samples without a
// capture time are never deduplicated.
func (s *Service) seen(ctx context.Context, sample model.RawSample) (string, bool) {
	key := s.keyOf(sample)
	if key == "" {
		return "", false
	}
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordDuplicateSample()
		s.logger.Debug(ctx, "duplicate sample skipped",
			logger.DeviceID(sample.DeviceID),
			logger.Metric(string(sample.MetricType)),
		)
		return key, true
	}
	return key, false
}

// keyOf returns the dedupe key of sample, empty when duplicates are not
// tracked for it.
func (s *Service) keyOf(sample model.RawSample) string {
	if s.deduper == nil || sample.CapturedAt.IsZero() {
		return ""
	}
	return dedupe.KeyOf(sample)
}

// forget lets a rejected sample be delivered again.
func (s *Service) forget(ctx context.Context, key string) {
	if s.deduper != nil && key != "" {
		s.deduper.Unrecord(ctx, key)
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownDevice):
		return dropUnknownDevice
	case errors.Is(err, ErrDeviceNotConnected):
		return dropDisconnected
	case errors.Is(err, ErrUnsupportedMetric):
		return dropUnsupported
	default:
		return dropOther
	}
}
