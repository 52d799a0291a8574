// Package service provides the biosensing engine: an explicitly constructed
// instance that owns the device registry, the sample pipeline, the state
// classifier and the event bus.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/biosense/internal/adapters/mq/pubsub"
	workerpool "github.com/okian/biosense/internal/adapters/mq/worker"
	repository "github.com/okian/biosense/internal/adapters/repository"
	"github.com/okian/biosense/internal/domain/aggregate"
	"github.com/okian/biosense/internal/domain/dedupe"
	"github.com/okian/biosense/internal/domain/filter"
	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/domain/quality"
	"github.com/okian/biosense/internal/domain/schema"
	"github.com/okian/biosense/internal/domain/scoring"
	"github.com/okian/biosense/internal/domain/status"
	"github.com/okian/biosense/pkg/logger"
	"github.com/okian/biosense/pkg/metrics"
)

const (
	defaultQueueSize    = 256
	defaultFilterWindow = 10
	defaultHistorySize  = 50
	defaultMargin       = 0.05
	defaultChangeDelta  = 0.1
	stopTimeout         = 5 * time.Second
)

// sampleProcessor adapts the service to workerpool.Processor.
type sampleProcessor struct {
	svc *Service
}

func (p *sampleProcessor) Process(ctx context.Context, s workerpool.Sample) error {
	return p.svc.process(ctx, s)
}

// Service is the engine. All methods are safe for concurrent use.
type Service struct {
	mu sync.RWMutex

	// pipelineMu linearizes aggregation, classification and the events they
	// publish.
	pipelineMu sync.Mutex

	// Core components
	devices    repository.Store
	schemas    *schema.Registry
	filter     *filter.Filter
	quality    *quality.Estimator
	aggregator *aggregate.Aggregator
	classifier *status.Classifier
	bus        *pubsub.Bus
	pool       *workerpool.Pool
	deduper    dedupe.Deduper
	adapters   map[string]model.DeviceAdapter

	// Configuration
	queueSize       int
	filterWindow    int
	historySize     int
	dedupeSize      int
	margin          float64
	changeThreshold float64
	weights         map[model.MetricType]float64
	now             func() time.Time

	// State
	started bool
	stopped bool

	// Logging
	logger logger.Logger
}

// New constructs an engine. It is usable for synchronous ingestion right
// away; Start runs the workers behind OnRawSample.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:       defaultQueueSize,
		filterWindow:    defaultFilterWindow,
		historySize:     defaultHistorySize,
		margin:          defaultMargin,
		changeThreshold: defaultChangeDelta,
		now:             time.Now,
		adapters:        make(map[string]model.DeviceAdapter),
		logger:          logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("engine")

	var scorerOpts []scoring.Option
	if s.weights != nil {
		scorerOpts = append(scorerOpts, scoring.WithWeights(s.weights))
	}

	s.devices = repository.NewMemoryStore(repository.WithClock(s.now))
	s.schemas = schema.NewRegistry()
	s.filter = filter.New(filter.WithWindow(s.filterWindow))
	s.quality = quality.New()
	s.aggregator = aggregate.New()
	s.classifier = status.New(
		status.WithScorer(scoring.New(scorerOpts...)),
		status.WithHistorySize(s.historySize),
		status.WithHysteresisMargin(s.margin),
		status.WithChangeThreshold(s.changeThreshold),
	)
	s.bus = pubsub.New(pubsub.WithLogger(s.logger))
	s.pool = workerpool.NewPool(&sampleProcessor{svc: s},
		workerpool.WithQueueSize(s.queueSize),
		workerpool.WithPoolLogger(s.logger),
	)
	if s.dedupeSize > 0 {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	return s
}

// Start runs the per-device workers that drain OnRawSample queues. The
// workers stop when ctx is cancelled or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting engine...")
	s.pool.Start(ctx)
	s.started = true
	s.logger.Info(ctx, "engine started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("filterWindow", s.filterWindow),
		logger.Int("historySize", s.historySize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains queued samples and stops the workers. The synchronous API
// keeps working after Stop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	s.started = false

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping engine...")
	if err := s.pool.Stop(ctx); err != nil {
		s.logger.Warn(ctx, "workers did not drain before timeout", logger.Error(err))
	}
	s.logger.Info(ctx, "engine stopped")
}

// Subscribe registers h for events of kind k and returns its id.
func (s *Service) Subscribe(k pubsub.Kind, h pubsub.Handler) string {
	return s.bus.Subscribe(k, h)
}

// Unsubscribe removes a subscription and reports whether it existed.
func (s *Service) Unsubscribe(id string) bool {
	return s.bus.Unsubscribe(id)
}

// Events returns the bus for typed subscriptions via pubsub.Subscribe.
// Handlers run synchronously on the ingesting goroutine and must not call
// Ingest.
func (s *Service) Events() *pubsub.Bus {
	return s.bus
}

// GetStats returns engine statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	adapters := len(s.adapters)
	s.mu.RUnlock()

	ctx := context.Background()
	state := s.classifier.Current()
	dataQuality := s.quality.Overall(s.now())
	stats := map[string]interface{}{
		"started":          started,
		"queueSize":        s.queueSize,
		"dedupeSize":       s.dedupeSize,
		"adapters":         adapters,
		"devices":          s.devices.Count(ctx),
		"connectedDevices": len(s.devices.Connected(ctx)),
		"lanes":            s.pool.Lanes(),
		"pendingSamples":   s.pool.Pending(ctx),
		"status":           string(state.Status),
		"arousalScore":     state.ArousalScore,
		"confidence":       state.Confidence,
		"dataQuality":      dataQuality,
		"historyLength":    len(s.classifier.History()),
	}
	if s.deduper != nil {
		stats["dedupeEntries"] = s.deduper.Size()
	}
	metrics.UpdateDataQuality(dataQuality)
	return stats
}
