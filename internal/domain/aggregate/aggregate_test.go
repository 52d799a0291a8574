package aggregate_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/biosense/internal/domain/aggregate"
	"github.com/okian/biosense/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregator(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given an empty aggregator", t, func() {
		a := aggregate.New()

		Convey("Then every metric is unknown", func() {
			s := a.Snapshot()
			for _, m := range model.BuiltinMetrics() {
				So(s.Known(m), ShouldBeFalse)
			}
		})

		Convey("When two devices report heart rate", func() {
			a.Apply("dev-1", model.HeartRate, model.ScalarValue(70), t0)
			s := a.Apply("dev-2", model.HeartRate, model.ScalarValue(90), t0.Add(time.Second))

			Convey("Then the last writer wins", func() {
				So(s.HeartRate.Value, ShouldEqual, 90)
				So(s.HeartRate.DeviceID, ShouldEqual, "dev-2")
				So(s.Timestamp, ShouldEqual, t0.Add(time.Second))
			})
		})

		Convey("When motion and a custom metric are applied", func() {
			a.Apply("dev-1", model.Motion, model.VectorValue(model.Vector3{X: 0.1, Y: 0.2, Z: 1}), t0)
			a.Apply("dev-1", model.MetricType("spo2"), model.ScalarValue(97), t0)

			Convey("Then both are stored in their slots", func() {
				want := model.Snapshot{
					Timestamp: t0,
					Motion: model.MotionReading{
						Value: model.Vector3{X: 0.1, Y: 0.2, Z: 1}, Known: true, UpdatedAt: t0, DeviceID: "dev-1",
					},
					Custom: map[model.MetricType]model.Reading{
						"spo2": {Value: 97, Known: true, UpdatedAt: t0, DeviceID: "dev-1"},
					},
				}
				So(cmp.Diff(want, a.Snapshot()), ShouldBeEmpty)
			})
		})

		Convey("When a returned snapshot is mutated", func() {
			s := a.Apply("dev-1", model.MetricType("spo2"), model.ScalarValue(97), t0)
			s.Custom["spo2"] = model.Reading{Value: 1}

			Convey("Then the aggregator is unaffected", func() {
				So(a.Snapshot().Custom["spo2"].Value, ShouldEqual, 97)
			})
		})
	})
}
