package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/biosense/internal/domain/model"
)

func newDevice(id string, at time.Time) model.Device {
	return model.Device{
		ID:           id,
		Type:         "wristband",
		Capabilities: map[model.MetricType]bool{model.HeartRate: true},
		RegisteredAt: at,
	}
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	d, err := store.Register(ctx, newDevice("d1", t0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != "d1" || d.Connected {
		t.Errorf("unexpected device %+v", d)
	}

	if _, err := store.Register(ctx, newDevice("d1", t0)); !errors.Is(err, ErrDeviceExists) {
		t.Errorf("expected ErrDeviceExists, got %v", err)
	}
	if !errors.Is(ErrDeviceExists, model.ErrConfiguration) {
		t.Error("ErrDeviceExists should be a configuration error")
	}
	if _, err := store.Register(ctx, newDevice("", t0)); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}

	got, err := store.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Supports(model.HeartRate) {
		t.Error("expected heart rate capability")
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, model.ErrUnknownDevice) {
		t.Errorf("expected unknown device error, got %v", err)
	}
}

func TestMemoryStore_Do(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.Register(ctx, newDevice("d1", t0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := store.Do(ctx, "d1", func(d *model.Device) error {
		d.Connected = true
		d.ID = "hijacked"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.Get(ctx, "d1")
	if !got.Connected {
		t.Error("expected committed change")
	}
	if got.ID != "d1" {
		t.Errorf("id must be immutable, got %q", got.ID)
	}

	boom := errors.New("boom")
	err = store.Do(ctx, "d1", func(d *model.Device) error {
		d.Connected = false
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected fn error, got %v", err)
	}
	got, _ = store.Get(ctx, "d1")
	if !got.Connected {
		t.Error("failed fn must not commit")
	}

	if err := store.Do(ctx, "missing", func(*model.Device) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.Do(cancelled, "d1", func(*model.Device) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMemoryStore_RemoveAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		if _, err := store.Register(ctx, newDevice(id, t0.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	_ = store.Do(ctx, "a", func(d *model.Device) error { d.Connected = true; return nil })

	list := store.List(ctx)
	if len(list) != 3 || list[0].ID != "c" || list[1].ID != "a" || list[2].ID != "b" {
		t.Errorf("unexpected order: %+v", list)
	}
	connected := store.Connected(ctx)
	if len(connected) != 1 || connected[0].ID != "a" {
		t.Errorf("unexpected connected set: %+v", connected)
	}

	removed, err := store.Remove(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.ID != "a" {
		t.Errorf("expected removed device a, got %q", removed.ID)
	}
	if _, err := store.Remove(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
	if err := store.Do(ctx, "a", func(*model.Device) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestMemoryStore_RemoveWaitsForDo(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := store.Register(ctx, newDevice("d1", time.Now())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.Do(ctx, "d1", func(d *model.Device) error {
			close(entered)
			<-release
			d.Connected = true
			return nil
		})
	}()
	<-entered

	removed := make(chan model.Device, 1)
	go func() {
		d, _ := store.Remove(ctx, "d1")
		removed <- d
	}()

	select {
	case <-removed:
		t.Fatal("remove must wait for the in-flight Do")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := <-removed; !d.Connected {
		t.Error("remove should observe the committed Do")
	}
}

func TestMemoryStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	const devices = 20
	const perDevice = 100

	for i := 0; i < devices; i++ {
		if _, err := store.Register(ctx, newDevice(fmt.Sprintf("d%d", i), time.Now())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < devices; i++ {
		id := fmt.Sprintf("d%d", i)
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < perDevice; k++ {
					_ = store.Do(ctx, id, func(d *model.Device) error {
						if d.Quality == nil {
							d.Quality = map[model.MetricType]float64{}
						}
						d.Quality[model.HeartRate]++
						return nil
					})
					_ = store.List(ctx)
				}
			}()
		}
	}
	wg.Wait()

	for _, d := range store.List(ctx) {
		if got := d.Quality[model.HeartRate]; got != 4*perDevice {
			t.Errorf("device %s: expected %d updates, got %v", d.ID, 4*perDevice, got)
		}
	}
}

func BenchmarkMemoryStore_Do(b *testing.B) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 64; i++ {
		_, _ = store.Register(ctx, newDevice(fmt.Sprintf("d%d", i), time.Now()))
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			id := fmt.Sprintf("d%d", i%64)
			_ = store.Do(ctx, id, func(d *model.Device) error {
				d.LastSeenAt = time.Now()
				return nil
			})
			i++
		}
	})
}
