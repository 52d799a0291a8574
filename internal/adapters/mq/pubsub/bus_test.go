package pubsub_test

import (
	"sync"
	"testing"

	"github.com/okian/biosense/internal/adapters/mq/pubsub"
	"github.com/okian/biosense/internal/domain/model"
	logging "github.com/okian/biosense/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBus(t *testing.T) {
	Convey("Given a bus", t, func() {
		_ = logging.Init()
		b := pubsub.New()

		Convey("When handlers subscribe to different kinds", func() {
			var got []string
			b.Subscribe(pubsub.KindDeviceConnected, func(e pubsub.Event) {
				got = append(got, "first:"+e.(pubsub.DeviceConnected).Device.ID)
			})
			b.Subscribe(pubsub.KindDeviceConnected, func(e pubsub.Event) {
				got = append(got, "second:"+e.(pubsub.DeviceConnected).Device.ID)
			})
			b.Subscribe(pubsub.KindDeviceRemoved, func(pubsub.Event) {
				got = append(got, "removed")
			})

			b.Publish(pubsub.DeviceConnected{Device: model.Device{ID: "d1"}})

			Convey("Then only matching handlers run, in subscription order", func() {
				So(got, ShouldResemble, []string{"first:d1", "second:d1"})
				So(b.Len(pubsub.KindDeviceConnected), ShouldEqual, 2)
			})
		})

		Convey("When a typed handler subscribes", func() {
			var got pubsub.StateChanged
			pubsub.Subscribe(b, func(e pubsub.StateChanged) { got = e })

			b.Publish(pubsub.StateChanged{
				Previous: model.InitialState(),
				Current:  model.PlayerState{Status: model.StatusFocused},
			})

			Convey("Then it receives the concrete payload", func() {
				So(got.Previous.Status, ShouldEqual, model.StatusDisconnected)
				So(got.Current.Status, ShouldEqual, model.StatusFocused)
			})
		})

		Convey("When a handler unsubscribes", func() {
			calls := 0
			id := b.Subscribe(pubsub.KindStateUpdated, func(pubsub.Event) { calls++ })
			So(b.Unsubscribe(id), ShouldBeTrue)
			So(b.Unsubscribe(id), ShouldBeFalse)

			b.Publish(pubsub.StateUpdated{})

			Convey("Then it is no longer called", func() {
				So(calls, ShouldEqual, 0)
			})
		})

		Convey("When a handler panics", func() {
			reached := false
			b.Subscribe(pubsub.KindDataProcessed, func(pubsub.Event) { panic("bad subscriber") })
			b.Subscribe(pubsub.KindDataProcessed, func(pubsub.Event) { reached = true })

			Convey("Then later handlers still run and Publish does not panic", func() {
				So(func() { b.Publish(pubsub.DataProcessed{}) }, ShouldNotPanic)
				So(reached, ShouldBeTrue)
			})
		})

		Convey("When a handler unsubscribes itself during delivery", func() {
			calls := 0
			var id string
			id = b.Subscribe(pubsub.KindDeviceRegistered, func(pubsub.Event) {
				calls++
				b.Unsubscribe(id)
			})

			b.Publish(pubsub.DeviceRegistered{})
			b.Publish(pubsub.DeviceRegistered{})

			Convey("Then it runs once without deadlocking", func() {
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When publishing concurrently", func() {
			var mu sync.Mutex
			count := 0
			b.Subscribe(pubsub.KindStateUpdated, func(pubsub.Event) {
				mu.Lock()
				count++
				mu.Unlock()
			})

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						b.Publish(pubsub.StateUpdated{})
					}
				}()
			}
			wg.Wait()

			Convey("Then every event is delivered", func() {
				So(count, ShouldEqual, 1000)
			})
		})
	})

	Convey("Given the event kinds", t, func() {
		Convey("Then every variant reports a distinct kind", func() {
			events := []pubsub.Event{
				pubsub.DeviceRegistered{}, pubsub.DeviceConnected{}, pubsub.DeviceDisconnected{},
				pubsub.DeviceRemoved{}, pubsub.StateChanged{}, pubsub.StateUpdated{}, pubsub.DataProcessed{},
			}
			seen := map[pubsub.Kind]bool{}
			for _, e := range events {
				seen[e.Kind()] = true
			}
			So(len(seen), ShouldEqual, len(pubsub.Kinds()))
		})
	})
}
