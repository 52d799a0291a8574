// Package dedupe drops samples that a driver delivered more than once.
package dedupe

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/pkg/ring"
)

const defaultMaxSize = 4096

// Deduper records seen sample keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so that a sample rejected downstream (for
	// example by queue backpressure) can be delivered again.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key identifies a sample by device, metric and capture time.
func Key(deviceID string, m model.MetricType, capturedAt time.Time) string {
	var b strings.Builder
	b.Grow(len(deviceID) + len(m) + 22)
	b.WriteString(deviceID)
	b.WriteByte('|')
	b.WriteString(string(m))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(capturedAt.UnixNano(), 10))
	return b.String()
}

// KeyOf is Key for a raw sample.
func KeyOf(s model.RawSample) string {
	return Key(s.DeviceID, s.MetricType, s.CapturedAt)
}

type entry struct {
	key string
	seq uint64
}

// inMemoryDeduper evicts in insertion order. The ring may hold keys that
// were unrecorded since; seq tells a live entry from a stale one.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64
	order   *ring.Ring[entry]
	seq     uint64
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.order = ring.New[entry](d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seq++
	d.seen[key] = d.seq
	if d.order == nil {
		return false
	}
	if old, evicted := d.order.Push(entry{key: key, seq: d.seq}); evicted {
		if seq, ok := d.seen[old.key]; ok && seq == old.seq {
			delete(d.seen, old.key)
		}
	}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
