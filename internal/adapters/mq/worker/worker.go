package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/biosense/internal/adapters/mq/queue"
	"github.com/okian/biosense/pkg/logger"
	"github.com/okian/biosense/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultQueueSize    = 256
	laneShutdownTimeout = 5 * time.Second
)

// Sample is what workers read off the queue.
type Sample = queue.Sample

// Processor handles one sample. Errors are logged and counted; the worker
// keeps running.
type Processor interface {
	Process(ctx context.Context, s Sample) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, s Sample) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, s Sample) error { return f(ctx, s) }

// Queue defines how workers receive samples.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Sample
}

// Worker processes samples from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Default().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	samples := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			w.process(ctx, s)
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	return w.wait(ctx)
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, s Sample) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.processor.Process(ctx, s); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "error processing sample",
			logger.DeviceID(s.DeviceID),
			logger.Metric(string(s.MetricType)),
			logger.Error(err),
		)
	}
}

// lane is one device's queue and worker. cancel ends the lane's context,
// which also releases the queue's forwarding goroutine.
type lane struct {
	queue  *queue.InMemoryQueue
	worker *InMemoryWorker
	cancel context.CancelFunc
}

// run starts the lane's worker under a context derived from parent.
// Callers hold the pool lock.
func (l *lane) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	go l.worker.Run(ctx)
}

func (l *lane) stop() {
	if l.cancel != nil {
		l.cancel()
	}
}

// Pool manages one lane per device.
type Pool struct {
	mu        sync.RWMutex
	lanes     map[string]*lane
	processor Processor
	queueSize int
	ctx       context.Context
	started   bool
	stopped   bool
	logger    logger.Logger
}

// NewPool creates an empty pool. Lanes are added per device.
func NewPool(p Processor, opts ...PoolOption) *Pool {
	pool := &Pool{
		lanes:     make(map[string]*lane),
		processor: p,
		queueSize: defaultQueueSize,
		logger:    logger.Default().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(pool)
	}
	return pool
}

// Start runs the workers of existing lanes and of lanes added later.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	p.ctx = ctx
	for _, l := range p.lanes {
		l.run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.lanes))
}

// Add creates the lane for id.
func (p *Pool) Add(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrStopped
	}
	if _, ok := p.lanes[id]; ok {
		return fmt.Errorf("%w: %s", ErrLaneExists, id)
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(p.queueSize), queue.WithName(id))
	l := &lane{
		queue:  q,
		worker: NewInMemoryWorker(q, p.processor, WithName(id), WithLogger(p.logger)),
	}
	p.lanes[id] = l
	if p.started {
		l.run(p.ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.lanes))
	return nil
}

// Submit enqueues s on its device lane without blocking.
func (p *Pool) Submit(ctx context.Context, s Sample) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	l, ok := p.lanes[s.DeviceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLane, s.DeviceID)
	}
	if !l.queue.Enqueue(ctx, s) {
		return fmt.Errorf("%w: %s", ErrBackpressure, s.DeviceID)
	}
	return nil
}

// Remove closes the lane for id and stops its worker without draining.
// Remove must not be called from the lane's own worker.
func (p *Pool) Remove(ctx context.Context, id string) error {
	p.mu.Lock()
	l, ok := p.lanes[id]
	if ok {
		delete(p.lanes, id)
	}
	started := p.started
	metrics.UpdateWorkerActiveCount(len(p.lanes))
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLane, id)
	}

	_ = l.queue.Close()
	metrics.DeleteQueueSeries(id)
	if !started {
		return nil
	}
	defer l.stop()
	ctx, cancel := context.WithTimeout(ctx, laneShutdownTimeout)
	defer cancel()
	return l.worker.Shutdown(ctx)
}

// Pending returns the number of queued samples across all lanes.
func (p *Pool) Pending(ctx context.Context) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, l := range p.lanes {
		n += l.queue.Len(ctx)
	}
	return n
}

// Lanes returns the number of lanes.
func (p *Pool) Lanes() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.lanes)
}

// Stop closes every lane and waits for the workers to drain their queues
// or for ctx to expire.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	lanes := make([]*lane, 0, len(p.lanes))
	for _, l := range p.lanes {
		lanes = append(lanes, l)
	}
	started := p.started
	p.mu.Unlock()

	for _, l := range lanes {
		_ = l.queue.Close()
	}
	if !started {
		return nil
	}

	var firstErr error
	for _, l := range lanes {
		if err := l.worker.wait(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		l.stop()
	}
	metrics.UpdateWorkerActiveCount(0)
	return firstErr
}
