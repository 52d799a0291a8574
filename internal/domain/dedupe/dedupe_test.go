package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/biosense/internal/domain/dedupe"
	"github.com/okian/biosense/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given sample identities", t, func() {
		ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

		Convey("Then the same sample always yields the same key", func() {
			a := dedupe.Key("d1", model.HeartRate, ts)
			b := dedupe.KeyOf(model.RawSample{DeviceID: "d1", MetricType: model.HeartRate, RawValue: 99, CapturedAt: ts})
			So(a, ShouldEqual, b)
		})

		Convey("Then device, metric and time each distinguish keys", func() {
			base := dedupe.Key("d1", model.HeartRate, ts)
			So(dedupe.Key("d2", model.HeartRate, ts), ShouldNotEqual, base)
			So(dedupe.Key("d1", model.GSR, ts), ShouldNotEqual, base)
			So(dedupe.Key("d1", model.HeartRate, ts.Add(time.Nanosecond)), ShouldNotEqual, base)
		})
	})
}

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is new", func() {
			seen := d.SeenAndRecord(ctx, "k1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key repeats", func() {
			d.SeenAndRecord(ctx, "k1")
			seen := d.SeenAndRecord(ctx, "k1")

			Convey("Then it is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "k1")
			d.Unrecord(ctx, "k1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When it is over capacity", func() {
			for i := 0; i < 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "k0"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "k3"), ShouldBeTrue)
			})
		})

		Convey("When a key is unrecorded and recorded again", func() {
			d.SeenAndRecord(ctx, "a")
			d.Unrecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "c")

			Convey("Then eviction of its stale slot does not forget it", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(-1))

		Convey("Then nothing is evicted", func() {
			for i := 0; i < 10000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
			}
			So(d.Size(), ShouldEqual, 10000)
		})
	})

	Convey("Given concurrent callers", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(-1))

		Convey("When they race on the same keys", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each key is new exactly once", func() {
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}
