package clock

import (
	"errors"
	"testing"
	"time"
)

func TestWall_neverGoesBackwards(t *testing.T) {
	readings := []time.Time{
		time.Unix(1000, 0),
		time.Unix(900, 0), // system clock stepped back
		time.Unix(1001, 0),
	}
	i := 0
	w := &Wall{now: func() time.Time {
		r := readings[i]
		i++
		return r
	}}

	if got := w.Now(); got != 1000 {
		t.Fatalf("first reading: got %d, want 1000", got)
	}
	if got := w.Now(); got != 1000 {
		t.Fatalf("after step back: got %d, want 1000", got)
	}
	if got := w.Now(); got != 1001 {
		t.Fatalf("third reading: got %d, want 1001", got)
	}
}

func TestHeight_advancesPerAcceptedStamp(t *testing.T) {
	h := NewHeight(100)
	accept := func(uint64) error { return nil }
	for want := uint64(100); want < 103; want++ {
		if got, _ := h.Stamp(accept); got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestHeight_readsDoNotAdvance(t *testing.T) {
	h := NewHeight(100)
	h.Now()
	h.Now()
	if got := h.Now(); got != 100 {
		t.Errorf("got %d, want 100", got)
	}
}

func TestHeight_rejectedStampKeepsHeight(t *testing.T) {
	h := NewHeight(100)
	rejected := errors.New("rejected")

	got, err := h.Stamp(func(uint64) error { return rejected })
	if !errors.Is(err, rejected) || got != 100 {
		t.Fatalf("rejected stamp: got (%d, %v)", got, err)
	}
	got, err = h.Stamp(func(uint64) error { return nil })
	if err != nil || got != 100 {
		t.Errorf("accepted stamp after rejection: got (%d, %v), want 100", got, err)
	}
	if h.Now() != 101 {
		t.Errorf("next height: got %d, want 101", h.Now())
	}
}

func TestManual_stampPassesError(t *testing.T) {
	m := NewManual(7)
	boom := errors.New("boom")
	got, err := m.Stamp(func(now uint64) error {
		if now != 7 {
			t.Errorf("fn saw %d, want 7", now)
		}
		return boom
	})
	if got != 7 || !errors.Is(err, boom) {
		t.Errorf("got (%d, %v)", got, err)
	}
}

func TestManual_setAndAdvance(t *testing.T) {
	m := NewManual(100)
	if m.Now() != 100 {
		t.Fatalf("start: got %d", m.Now())
	}
	m.Advance(1)
	if m.Now() != 101 {
		t.Errorf("advance: got %d", m.Now())
	}
	m.Set(200)
	if m.Now() != 200 {
		t.Errorf("set: got %d", m.Now())
	}
}
