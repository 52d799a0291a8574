package filter_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/okian/biosense/internal/domain/filter"
	"github.com/okian/biosense/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const hrNoise = 15

func TestFilter_HeartRate(t *testing.T) {
	Convey("Given a heart rate filter", t, func() {
		f := filter.New()

		Convey("When fewer than three samples are buffered", func() {
			first := f.Apply("d1", model.HeartRate, model.ScalarValue(70), hrNoise)
			second := f.Apply("d1", model.HeartRate, model.ScalarValue(90), hrNoise)

			Convey("Then the raw value passes through", func() {
				So(first.Scalar, ShouldEqual, 70)
				So(second.Scalar, ShouldEqual, 90)
			})
		})

		Convey("When an outlier arrives after steady samples", func() {
			for _, v := range []float64{70, 72, 71, 73} {
				f.Apply("d1", model.HeartRate, model.ScalarValue(v), hrNoise)
			}
			out := f.Apply("d1", model.HeartRate, model.ScalarValue(180), hrNoise)

			Convey("Then the outlier is excluded from the average", func() {
				So(out.Scalar, ShouldAlmostEqual, 71.5, 1e-9)
			})
		})

		Convey("When an outlier sits in the middle of the buffer", func() {
			for _, v := range []float64{70, 40, 72} {
				f.Apply("d1", model.HeartRate, model.ScalarValue(v), hrNoise)
			}
			out := f.Apply("d1", model.HeartRate, model.ScalarValue(74), hrNoise)

			Convey("Then only inliers are averaged", func() {
				So(out.Scalar, ShouldAlmostEqual, 72, 1e-9)
			})
		})
	})
}

func TestFilter_MovingAverageAndMotion(t *testing.T) {
	Convey("Given a filter with a window of three", t, func() {
		f := filter.New(filter.WithWindow(3))

		Convey("When scalar samples exceed the window", func() {
			var out model.Value
			for _, v := range []float64{1, 2, 3, 4, 5} {
				out = f.Apply("d1", model.GSR, model.ScalarValue(v), 2)
			}

			Convey("Then the oldest samples are evicted first", func() {
				So(out.Scalar, ShouldAlmostEqual, 4, 1e-9)
				So(f.Len("d1", model.GSR), ShouldEqual, 3)
			})
		})

		Convey("When motion vectors are filtered", func() {
			f.Apply("d1", model.Motion, model.VectorValue(model.Vector3{X: 1, Y: 0, Z: 1}), 0.5)
			out := f.Apply("d1", model.Motion, model.VectorValue(model.Vector3{X: 3, Y: -2, Z: 1}), 0.5)

			Convey("Then each axis is averaged independently", func() {
				So(out.Shape, ShouldEqual, model.VectorShape)
				So(out.Vector.X, ShouldAlmostEqual, 2, 1e-9)
				So(out.Vector.Y, ShouldAlmostEqual, -1, 1e-9)
				So(out.Vector.Z, ShouldAlmostEqual, 1, 1e-9)
			})
		})

		Convey("When two devices report the same metric", func() {
			f.Apply("d1", model.GSR, model.ScalarValue(10), 2)
			out := f.Apply("d2", model.GSR, model.ScalarValue(20), 2)

			Convey("Then their buffers are independent", func() {
				So(out.Scalar, ShouldEqual, 20)
			})

			Convey("And resetting one device keeps the other", func() {
				f.Reset("d1")
				So(f.Len("d1", model.GSR), ShouldEqual, 0)
				So(f.Len("d2", model.GSR), ShouldEqual, 1)
			})
		})
	})
}

func TestFilter_Deterministic(t *testing.T) {
	Convey("Given two filters fed the same sequence", t, func() {
		a, b := filter.New(), filter.New()
		seq := []float64{60, 61, 95, 62, 63, 120, 64, 65, 66, 67, 68, 30}

		Convey("Then their outputs are identical", func() {
			for _, v := range seq {
				x := a.Apply("d", model.HeartRate, model.ScalarValue(v), hrNoise)
				y := b.Apply("d", model.HeartRate, model.ScalarValue(v), hrNoise)
				So(x, ShouldResemble, y)
			}
		})
	})
}

func TestFilter_Concurrency(t *testing.T) {
	Convey("Given a filter shared by many device streams", t, func() {
		f := filter.New()
		const devices = 8
		const samples = 200

		Convey("When streams apply samples concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < devices; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for j := 0; j < samples; j++ {
						f.Apply(fmt.Sprintf("d%d", id), model.HeartRate, model.ScalarValue(float64(60+j%10)), hrNoise)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every buffer is bounded by the window", func() {
				for i := 0; i < devices; i++ {
					So(f.Len(fmt.Sprintf("d%d", i), model.HeartRate), ShouldEqual, 10)
				}
			})
		})
	})
}

func TestMedian(t *testing.T) {
	Convey("Given value sets", t, func() {
		So(filter.Median(nil), ShouldEqual, 0)
		So(filter.Median([]float64{3, 1, 2}), ShouldEqual, 2)
		So(filter.Median([]float64{4, 1, 3, 2}), ShouldEqual, 2.5)
	})
}
