package ring

import (
	"reflect"
	"testing"
)

func TestRing_PushWithinCapacity(t *testing.T) {
	r := New[int](3)
	for i := 1; i <= 3; i++ {
		if _, evicted := r.Push(i); evicted {
			t.Fatalf("unexpected eviction at %d", i)
		}
	}
	if r.Len() != 3 {
		t.Errorf("expected length 3, got %d", r.Len())
	}
	if got := r.Values(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("unexpected values %v", got)
	}
}

func TestRing_EvictsOldest(t *testing.T) {
	r := New[int](3)
	for i := 1; i <= 3; i++ {
		r.Push(i)
	}
	old, evicted := r.Push(4)
	if !evicted || old != 1 {
		t.Errorf("expected 1 evicted, got %d (evicted=%v)", old, evicted)
	}
	r.Push(5)
	if got := r.Values(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Errorf("unexpected values %v", got)
	}
	if last, ok := r.Last(); !ok || last != 5 {
		t.Errorf("expected last 5, got %d", last)
	}
}

func TestRing_Tail(t *testing.T) {
	r := New[int](4)
	for i := 1; i <= 6; i++ {
		r.Push(i)
	}
	if got := r.Tail(2); !reflect.DeepEqual(got, []int{5, 6}) {
		t.Errorf("unexpected tail %v", got)
	}
	if got := r.Tail(10); !reflect.DeepEqual(got, []int{3, 4, 5, 6}) {
		t.Errorf("unexpected tail %v", got)
	}
	if got := r.Tail(0); got != nil {
		t.Errorf("expected nil tail, got %v", got)
	}
}

func TestRing_ResetAndMinimumCapacity(t *testing.T) {
	r := New[string](0)
	if r.Cap() != 1 {
		t.Fatalf("expected capacity 1, got %d", r.Cap())
	}
	r.Push("a")
	r.Push("b")
	if got := r.Values(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("unexpected values %v", got)
	}
	r.Reset()
	if r.Len() != 0 {
		t.Errorf("expected empty ring after reset")
	}
	if _, ok := r.Last(); ok {
		t.Errorf("expected no last element after reset")
	}
}
