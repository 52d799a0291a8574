// Package metrics provides Prometheus metrics for the biosense engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds. Ingest work is sub-millisecond, so the
// default Prometheus buckets (which start at 5ms) would hide everything.
var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100}

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline metrics
	samplesIngested  *prometheus.CounterVec
	samplesDropped   *prometheus.CounterVec
	samplesDefaulted *prometheus.CounterVec
	duplicates       prometheus.Counter
	ingestLatency    prometheus.Histogram

	// Classification metrics
	metricQuality         *prometheus.GaugeVec
	dataQuality           prometheus.Gauge
	arousalScore          prometheus.Gauge
	confidence            prometheus.Gauge
	statusChanges         *prometheus.CounterVec
	evaluations           prometheus.Counter
	classificationLatency prometheus.Histogram

	// Registry metrics
	devicesRegistered prometheus.Gauge
	devicesConnected  prometheus.Gauge

	// Queue metrics
	queueCapacity       *prometheus.GaugeVec
	queueSize           *prometheus.GaugeVec
	queueUtilization    *prometheus.GaugeVec
	queueEnqueued       *prometheus.CounterVec
	queueDequeued       *prometheus.CounterVec
	queueEnqueueErrors  *prometheus.CounterVec
	queueEnqueueLatency prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Event bus metrics
	eventsPublished  *prometheus.CounterVec
	subscriberPanics *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
	// Runtime metrics come from the system updater; only build info is
	// collected here.
	customRegistry.MustRegister(collectors.NewBuildInfoCollector())
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "biosense",
		subsystem:        "engine",
		histogramBuckets: defaultBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.samplesIngested = m.counterVec("samples_ingested_total", "Samples that completed the pipeline", "metric")
	m.samplesDropped = m.counterVec("samples_dropped_total", "Samples rejected before processing", "reason")
	m.samplesDefaulted = m.counterVec("samples_defaulted_total", "Samples replaced by the schema default", "metric")
	m.duplicates = m.counter("samples_duplicate_total", "Samples delivered more than once")
	m.ingestLatency = m.histogram("ingest_latency_milliseconds", "Time to normalize, filter and score one sample")

	m.metricQuality = m.gaugeVec("metric_quality_ratio", "Current quality per metric", "metric")
	m.dataQuality = m.gauge("data_quality_ratio", "Overall data quality")
	m.arousalScore = m.gauge("arousal_score", "Current arousal score")
	m.confidence = m.gauge("confidence_ratio", "Confidence of the current state")
	m.statusChanges = m.counterVec("status_changes_total", "Published state changes by new status", "status")
	m.evaluations = m.counter("evaluations_total", "State recomputations")
	m.classificationLatency = m.histogram("classification_latency_milliseconds", "Time to classify one snapshot")

	m.devicesRegistered = m.gauge("devices_registered", "Devices in the registry")
	m.devicesConnected = m.gauge("devices_connected", "Connected devices")

	m.queueCapacity = m.gaugeVec("queue_capacity", "Maximum queue capacity", "queue")
	m.queueSize = m.gaugeVec("queue_size", "Current queue size", "queue")
	m.queueUtilization = m.gaugeVec("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)", "queue")
	m.queueEnqueued = m.counterVec("queue_enqueue_total", "Samples enqueued", "queue")
	m.queueDequeued = m.counterVec("queue_dequeue_total", "Samples dequeued", "queue")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Rejected enqueues", "queue", "reason")
	m.queueEnqueueLatency = m.histogram("queue_enqueue_latency_milliseconds", "Enqueue latency")

	m.workerActiveCount = m.gauge("worker_active_count", "Running device workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency")
	m.workerErrors = m.counter("worker_errors_total", "Samples the worker failed to process")

	m.eventsPublished = m.counterVec("events_published_total", "Events published on the bus", "event")
	m.subscriberPanics = m.counterVec("subscriber_panics_total", "Recovered subscriber panics", "event")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "system_gc_pause_milliseconds",
		Help:    "Most recent GC pause",
		Buckets: prometheus.DefBuckets,
	})
}

// Pipeline Metrics Functions.

// RecordSampleIngested counts a sample that completed the pipeline.
func RecordSampleIngested(metric string) {
	globalManager.samplesIngested.WithLabelValues(metric).Inc()
}

// RecordSampleDropped counts a sample rejected before processing.
func RecordSampleDropped(reason string) {
	globalManager.samplesDropped.WithLabelValues(reason).Inc()
}

// RecordSampleDefaulted counts a sample replaced by the schema default.
func RecordSampleDefaulted(metric string) {
	globalManager.samplesDefaulted.WithLabelValues(metric).Inc()
}

// RecordDuplicateSample counts a redelivered sample.
func RecordDuplicateSample() {
	globalManager.duplicates.Inc()
}

// RecordIngestLatency records pipeline latency.
func RecordIngestLatency(latencyMs float64) {
	globalManager.ingestLatency.Observe(latencyMs)
}

// Classification Metrics Functions.

// UpdateMetricQuality sets the quality gauge of one metric.
func UpdateMetricQuality(metric string, q float64) {
	globalManager.metricQuality.WithLabelValues(metric).Set(q)
}

// UpdateDataQuality sets the overall quality gauge.
func UpdateDataQuality(q float64) {
	globalManager.dataQuality.Set(q)
}

// UpdateArousalScore sets the arousal gauge.
func UpdateArousalScore(score float64) {
	globalManager.arousalScore.Set(score)
}

// UpdateConfidence sets the confidence gauge.
func UpdateConfidence(c float64) {
	globalManager.confidence.Set(c)
}

// RecordStatusChange counts a published state change.
func RecordStatusChange(status string) {
	globalManager.statusChanges.WithLabelValues(status).Inc()
}

// RecordEvaluation counts a state recomputation.
func RecordEvaluation() {
	globalManager.evaluations.Inc()
}

// RecordClassificationLatency records classification latency.
func RecordClassificationLatency(latencyMs float64) {
	globalManager.classificationLatency.Observe(latencyMs)
}

// Registry Metrics Functions.

// UpdateDevicesRegistered sets the registered devices gauge.
func UpdateDevicesRegistered(count int) {
	globalManager.devicesRegistered.Set(float64(count))
}

// UpdateDevicesConnected sets the connected devices gauge.
func UpdateDevicesConnected(count int) {
	globalManager.devicesConnected.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(queue string, capacity int) {
	globalManager.queueCapacity.WithLabelValues(queue).Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(queue string, size int) {
	globalManager.queueSize.WithLabelValues(queue).Set(float64(size))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(queue string, utilization float64) {
	globalManager.queueUtilization.WithLabelValues(queue).Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue(queue string) {
	globalManager.queueEnqueued.WithLabelValues(queue).Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue(queue string) {
	globalManager.queueDequeued.WithLabelValues(queue).Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError(queue, reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(queue, reason).Inc()
}

// RecordQueueEnqueueLatency records enqueue latency.
func RecordQueueEnqueueLatency(latencyMs float64) {
	globalManager.queueEnqueueLatency.Observe(latencyMs)
}

// DeleteQueueSeries drops the per-queue series of a removed queue.
func DeleteQueueSeries(queue string) {
	globalManager.queueCapacity.DeleteLabelValues(queue)
	globalManager.queueSize.DeleteLabelValues(queue)
	globalManager.queueUtilization.DeleteLabelValues(queue)
	globalManager.queueEnqueued.DeleteLabelValues(queue)
	globalManager.queueDequeued.DeleteLabelValues(queue)
	globalManager.queueEnqueueErrors.DeletePartialMatch(prometheus.Labels{"queue": queue})
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Event Bus Metrics Functions.

// RecordEventPublished counts a published event.
func RecordEventPublished(event string) {
	globalManager.eventsPublished.WithLabelValues(event).Inc()
}

// RecordSubscriberPanic counts a recovered subscriber panic.
func RecordSubscriberPanic(event string) {
	globalManager.subscriberPanics.WithLabelValues(event).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
