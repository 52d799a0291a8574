package config_test

import (
	"errors"
	"testing"

	"github.com/okian/biosense/internal/config"
	"github.com/okian/biosense/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.FilterWindow, convey.ShouldEqual, 10)
			convey.So(cfg.HistorySize, convey.ShouldEqual, 50)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 4096)
			convey.So(cfg.HysteresisMargin, convey.ShouldEqual, 0.05)
			convey.So(cfg.ChangeThreshold, convey.ShouldEqual, 0.1)
			convey.So(cfg.Simulate, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then weights map to metric types", func() {
			w, err := cfg.MetricWeights()
			convey.So(err, convey.ShouldBeNil)
			convey.So(w, convey.ShouldResemble, map[model.MetricType]float64{
				model.HeartRate: 0.4,
				model.GSR:       0.3,
				model.Motion:    0.2,
				model.EEG:       0.1,
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func()
		}{
			{"empty addr", func() { cfg.Addr = "" }},
			{"zero queue", func() { cfg.QueueSize = 0 }},
			{"zero filter window", func() { cfg.FilterWindow = 0 }},
			{"tiny history", func() { cfg.HistorySize = 1 }},
			{"negative dedupe", func() { cfg.DedupeSize = -1 }},
			{"negative margin", func() { cfg.HysteresisMargin = -0.1 }},
			{"unknown weight", func() { cfg.Weights["temperature"] = 1 }},
			{"negative weight", func() { cfg.Weights["gsr"] = -1 }},
			{"bad simulator setup", func() { cfg.Simulate = true; cfg.SimulateDevices = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When it has "+tc.name, func() {
				tc.mutate()

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
