package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the engine namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.evaluations.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "biosense_engine_evaluations_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.duplicates.Inc()

			Convey("Then names and labels follow the options", func() {
				expected := `
# HELP test_namespace_test_subsystem_samples_duplicate_total Samples delivered more than once
# TYPE test_namespace_test_subsystem_samples_duplicate_total counter
test_namespace_test_subsystem_samples_duplicate_total{env="test"} 1
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_namespace_test_subsystem_samples_duplicate_total")
				So(err, ShouldBeNil)
			})
		})

		Convey("When registering twice on the same registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording pipeline metrics", func() {
			before := testutil.ToFloat64(globalManager.samplesIngested.WithLabelValues("heartRate"))
			RecordSampleIngested("heartRate")
			RecordSampleIngested("heartRate")
			RecordSampleDropped("backpressure")
			RecordSampleDefaulted("gsr")
			RecordDuplicateSample()
			RecordIngestLatency(0.2)

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.samplesIngested.WithLabelValues("heartRate")), ShouldEqual, before+2)
			})
		})

		Convey("When recording classification metrics", func() {
			UpdateMetricQuality("heartRate", 0.8)
			UpdateDataQuality(0.75)
			UpdateArousalScore(0.42)
			UpdateConfidence(0.3)
			RecordStatusChange("normal")
			RecordEvaluation()
			RecordClassificationLatency(0.05)

			Convey("Then gauges hold the latest value", func() {
				So(testutil.ToFloat64(globalManager.arousalScore), ShouldEqual, 0.42)
				So(testutil.ToFloat64(globalManager.metricQuality.WithLabelValues("heartRate")), ShouldEqual, 0.8)
			})
		})

		Convey("When recording queue metrics", func() {
			UpdateQueueCapacity("d1", 10)
			UpdateQueueSize("d1", 5)
			UpdateQueueUtilization("d1", 0.5)
			RecordQueueEnqueue("d1")
			RecordQueueDequeue("d1")
			RecordQueueEnqueueError("d1", "queue_full")
			RecordQueueEnqueueLatency(0.01)

			Convey("Then the queue series exist until deleted", func() {
				So(testutil.ToFloat64(globalManager.queueSize.WithLabelValues("d1")), ShouldEqual, 5)
				DeleteQueueSeries("d1")
				So(testutil.CollectAndCount(globalManager.queueEnqueueErrors), ShouldEqual, 0)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					UpdateDevicesRegistered(2)
					UpdateDevicesConnected(1)
					UpdateWorkerActiveCount(2)
					RecordWorkerProcessingLatency(0.1)
					RecordWorkerError()
					RecordEventPublished("stateUpdated")
					RecordSubscriberPanic("stateUpdated")
					RecordHTTPRequest("/state", "GET", "200")
					RecordHTTPRequestDuration("/state", "GET", "200", 1.5)
					RecordErrorByComponent("engine", "unknown_device")
					RecordErrorByEndpoint("/samples", "POST", "bad_request")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
