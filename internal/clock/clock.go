// Package clock supplies the "current timestamp" stamped onto grading records
// and transfer history entries. The ledger treats the value as opaque and
// non-decreasing; it never validates it.
package clock

import (
	"sync"
	"time"
)

// Source returns the current timestamp or block height.
type Source interface {
	// Now returns the current reading without consuming it.
	Now() uint64

	// Stamp calls fn with the current reading and returns it. A Source that
	// counts mutations only consumes the reading when fn returns nil.
	Stamp(fn func(now uint64) error) (uint64, error)
}

// Wall reports unix seconds. It never goes backwards, even if the system
// clock does.
type Wall struct {
	mu   sync.Mutex
	last uint64
	now  func() time.Time
}

// NewWall returns a Wall backed by time.Now.
func NewWall() *Wall {
	return &Wall{now: time.Now}
}

// Now implements Source.
func (w *Wall) Now() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	ts := uint64(w.now().Unix())
	if ts < w.last {
		return w.last
	}
	w.last = ts
	return ts
}

// Stamp implements Source.
func (w *Wall) Stamp(fn func(now uint64) error) (uint64, error) {
	now := w.Now()
	return now, fn(now)
}

// Height is a block-height style counter that advances by one per recorded
// mutation. Reads and rejected mutations leave it where it is.
//
// Stamp holds the counter's lock while fn runs, so stamped writes are
// serialised and heights are handed out in commit order.
type Height struct {
	mu   sync.Mutex
	next uint64
}

// NewHeight returns a Height whose first stamped mutation receives start.
func NewHeight(start uint64) *Height {
	return &Height{next: start}
}

// Now returns the height the next accepted mutation will receive.
func (h *Height) Now() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.next
}

// Stamp implements Source.
func (h *Height) Stamp(fn func(now uint64) error) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur := h.next
	if err := fn(cur); err != nil {
		return cur, err
	}
	h.next++
	return cur, nil
}

// Manual is a Source controlled by the caller. Useful in tests.
type Manual struct {
	mu  sync.Mutex
	cur uint64
}

// NewManual returns a Manual reading start.
func NewManual(start uint64) *Manual {
	return &Manual{cur: start}
}

// Now implements Source.
func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Stamp implements Source.
func (m *Manual) Stamp(fn func(now uint64) error) (uint64, error) {
	now := m.Now()
	return now, fn(now)
}

// Set moves the clock to v. Callers are responsible for keeping it monotonic.
func (m *Manual) Set(v uint64) {
	m.mu.Lock()
	m.cur = v
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d uint64) {
	m.mu.Lock()
	m.cur += d
	m.mu.Unlock()
}
