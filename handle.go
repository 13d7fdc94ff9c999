package beatkeeper

import (
	"runtime"
	"sync"
	"time"

	"github.com/relaypulse/beatkeeper/internal/deck"
)

// Handle is the producer-side token a registered task uses to report its
// own beats. A Handle is not safe for concurrent use by multiple
// goroutines unless each call is independently synchronized by the caller.
//
// Unregistration is tied to the handle's lifetime: Close is the
// authoritative path, and a runtime.SetFinalizer backstop best-effort
// unregisters a Handle the caller forgot to close once it becomes
// unreachable. Finalizer send failure is suppressed, same as an explicit
// Close's.
type Handle struct {
	id   RecordId
	deck *deck.Deck

	closeOnce sync.Once
}

func newHandle(d *deck.Deck, id RecordId) *Handle {
	h := &Handle{id: id, deck: d}
	runtime.SetFinalizer(h, func(h *Handle) { h.Close() })
	return h
}

// Id returns the record id this handle was issued for.
func (h *Handle) Id() RecordId { return h.id }

// SignalNow records a beat at the current time.
func (h *Handle) SignalNow() error {
	return h.SignalAt(time.Now())
}

// SignalAt records a beat at an explicit timestamp, for callers that
// batch or backfill signals rather than emitting them as they happen.
func (h *Handle) SignalAt(ts time.Time) error {
	return h.deck.Signal(h.id, ts)
}

// SetDeployment updates the record's deployment timestamp, which GuessFreq
// measures a record's single signal against.
func (h *Handle) SetDeployment(ts time.Time) error {
	return h.deck.Deploy(h.id, ts)
}

// SetExpectedFreq updates the record's expected cadence.
func (h *Handle) SetExpectedFreq(freq time.Duration) error {
	return h.deck.SetExpectedFreq(h.id, freq)
}

// Close unregisters the handle's record. Safe to call more than once; safe
// to call even if the deck has already stopped (the failure is
// suppressed — the deck being gone means there is nothing left to clean).
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		runtime.SetFinalizer(h, nil)
		_ = h.deck.Unregister(h.id)
	})
	return nil
}
