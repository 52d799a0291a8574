package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/biosense/internal/domain/model"
	types "github.com/okian/biosense/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSampleRequest(t *testing.T) {
	Convey("Given a sample request", t, func() {
		ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		Convey("When all fields are valid", func() {
			req := types.SampleRequest{DeviceID: "d1", Metric: "heartRate", Value: 72.0, TS: ts.Format(time.RFC3339)}

			Convey("Then it converts to a raw sample", func() {
				So(req.Validate(), ShouldBeNil)
				s, err := req.Sample()
				So(err, ShouldBeNil)
				So(s.DeviceID, ShouldEqual, "d1")
				So(s.MetricType, ShouldEqual, model.HeartRate)
				So(s.RawValue, ShouldEqual, 72.0)
				So(s.CapturedAt, ShouldEqual, ts)
			})
		})

		Convey("When ts is omitted", func() {
			req := types.SampleRequest{DeviceID: "d1", Metric: "gsr", Value: "4.2"}

			Convey("Then the capture time stays zero", func() {
				s, err := req.Sample()
				So(err, ShouldBeNil)
				So(s.CapturedAt.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When fields are missing or malformed", func() {
			cases := []struct {
				req  types.SampleRequest
				want string
			}{
				{types.SampleRequest{Metric: "gsr", Value: 1.0}, "missing device_id"},
				{types.SampleRequest{DeviceID: "  ", Metric: "gsr", Value: 1.0}, "missing device_id"},
				{types.SampleRequest{DeviceID: "d1", Value: 1.0}, "missing metric"},
				{types.SampleRequest{DeviceID: "d1", Metric: "gsr"}, "missing value"},
				{types.SampleRequest{DeviceID: "d1", Metric: "gsr", Value: 1.0, TS: "yesterday"}, "invalid ts"},
			}

			Convey("Then validation names the problem", func() {
				for _, c := range cases {
					err := c.req.Validate()
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, c.want)
					_, err = c.req.Sample()
					So(err, ShouldNotBeNil)
				}
			})
		})

		Convey("When decoded from JSON with a vector value", func() {
			var req types.SampleRequest
			err := json.Unmarshal([]byte(`{"device_id":"d1","metric":"motion","value":[0.1,0.2,0.9]}`), &req)

			Convey("Then the value keeps its array shape", func() {
				So(err, ShouldBeNil)
				So(req.Validate(), ShouldBeNil)
				So(req.Value, ShouldResemble, []any{0.1, 0.2, 0.9})
			})
		})
	})
}
