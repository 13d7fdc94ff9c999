package model

import "time"

// BeatCap bounds the number of timestamps a single Track remembers.
// Appending past this drops the oldest entry.
const BeatCap = 100

// Track is a bounded FIFO of signal timestamps for one record. The zero
// value is an empty, ready-to-use Track. Entries are stored in insertion
// order, which need not be sorted by value: producers may pass arbitrary
// timestamps (clock skew, backfilled beats), and Track never reorders them.
type Track struct {
	entries []time.Time
}

// Append pushes a timestamp to the back, evicting the oldest entry once the
// track holds more than BeatCap entries.
func (t *Track) Append(ts time.Time) {
	t.entries = append(t.entries, ts)
	if over := len(t.entries) - BeatCap; over > 0 {
		t.entries = t.entries[over:]
	}
}

// Clear empties the track.
func (t *Track) Clear() {
	t.entries = nil
}

// Len returns the number of remembered timestamps.
func (t Track) Len() int { return len(t.entries) }

// Front returns the oldest remembered timestamp.
func (t Track) Front() (time.Time, bool) {
	if len(t.entries) == 0 {
		return time.Time{}, false
	}
	return t.entries[0], true
}

// Back returns the most recently appended timestamp.
func (t Track) Back() (time.Time, bool) {
	if len(t.entries) == 0 {
		return time.Time{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Entries returns a copy of the remembered timestamps in insertion order.
// Callers get a copy, not a view, so they can't mutate the track's backing
// array out from under a concurrent Append.
func (t Track) Entries() []time.Time {
	out := make([]time.Time, len(t.entries))
	copy(out, t.entries)
	return out
}

// Window returns a new Track containing the entries e for which (from is
// nil or e is strictly after *from) and (to is nil or e is strictly before
// *to). The second return value is false exactly when nothing qualified,
// in which case the returned Track is empty; a caller can test it instead
// of checking the length.
func (t Track) Window(from, to *time.Time) (Track, bool) {
	var out Track
	for _, e := range t.entries {
		if from != nil && !e.After(*from) {
			continue
		}
		if to != nil && !e.Before(*to) {
			continue
		}
		out.entries = append(out.entries, e)
	}
	return out, len(out.entries) > 0
}

// HasAnyAfter reports whether the most recent entry is strictly after ts.
func (t Track) HasAnyAfter(ts time.Time) bool {
	last, ok := t.Back()
	return ok && last.After(ts)
}

// CadenceIter yields the durations between consecutive timestamps in a
// Track, in insertion order. A track with fewer than two entries yields
// nothing. When a later timestamp precedes an earlier one (clock skew from
// a producer passing arbitrary timestamps), the yielded duration is zero
// rather than an error or a negative value.
type CadenceIter struct {
	entries []time.Time
	idx     int
}

// NewCadenceIter borrows track's entries to iterate over. It does not copy
// them: the iterator reads the same backing array as t.
func NewCadenceIter(t Track) *CadenceIter {
	return &CadenceIter{entries: t.entries}
}

// Next returns the next inter-signal duration, or false once exhausted.
func (c *CadenceIter) Next() (time.Duration, bool) {
	if c.idx+1 >= len(c.entries) {
		return 0, false
	}
	a, b := c.entries[c.idx], c.entries[c.idx+1]
	c.idx++
	if b.Before(a) {
		return 0, true
	}
	return b.Sub(a), true
}

// Intervals drains a CadenceIter into a slice, for callers that don't need
// to stream it.
func Intervals(t Track) []time.Duration {
	iter := NewCadenceIter(t)
	var out []time.Duration
	for {
		d, ok := iter.Next()
		if !ok {
			break
		}
		out = append(out, d)
	}
	return out
}
