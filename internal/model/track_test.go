package model

import (
	"testing"
	"time"
)

func TestTrackAppendEvictsOldest(t *testing.T) {
	var tr Track
	base := time.Unix(0, 0)
	for i := 0; i < BeatCap+10; i++ {
		tr.Append(base.Add(time.Duration(i) * time.Second))
	}
	if tr.Len() != BeatCap {
		t.Fatalf("Len() = %d, want %d", tr.Len(), BeatCap)
	}
	front, ok := tr.Front()
	if !ok {
		t.Fatal("Front() = false, want true")
	}
	wantFront := base.Add(10 * time.Second)
	if !front.Equal(wantFront) {
		t.Errorf("Front() = %v, want %v", front, wantFront)
	}
}

func TestTrackWindow(t *testing.T) {
	var tr Track
	base := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		tr.Append(base.Add(time.Duration(i) * time.Second))
	}

	t.Run("from_excludes_boundary_entry", func(t *testing.T) {
		from := base.Add(2 * time.Second)
		w, ok := tr.Window(&from, nil)
		if !ok {
			t.Fatal("Window() ok = false, want true")
		}
		if w.Len() != 2 {
			t.Fatalf("Window len = %d, want 2", w.Len())
		}
	})

	t.Run("nothing_after_last_entry_returns_false", func(t *testing.T) {
		from := base.Add(10 * time.Second)
		w, ok := tr.Window(&from, nil)
		if ok || w.Len() != 0 {
			t.Errorf("Window() = (%v, %v), want (empty, false)", w, ok)
		}
	})

	t.Run("nil_bounds_returns_everything", func(t *testing.T) {
		w, ok := tr.Window(nil, nil)
		if !ok || w.Len() != 5 {
			t.Errorf("Window(nil, nil) = (len %d, %v), want (5, true)", w.Len(), ok)
		}
	})
}

func TestCadenceIterClockSkew(t *testing.T) {
	var tr Track
	base := time.Unix(100, 0)
	tr.Append(base)
	tr.Append(base.Add(-5 * time.Second)) // earlier than the previous entry

	iter := NewCadenceIter(tr)
	d, ok := iter.Next()
	if !ok {
		t.Fatal("Next() ok = false, want true")
	}
	if d != 0 {
		t.Errorf("Next() duration = %v, want 0 for clock-skewed entries", d)
	}
	if _, ok := iter.Next(); ok {
		t.Error("Next() after exhaustion = true, want false")
	}
}

func TestCadenceIterFewerThanTwoEntries(t *testing.T) {
	var empty Track
	if _, ok := NewCadenceIter(empty).Next(); ok {
		t.Error("empty track should yield nothing")
	}

	var one Track
	one.Append(time.Now())
	if _, ok := NewCadenceIter(one).Next(); ok {
		t.Error("single-entry track should yield nothing")
	}
}

func TestHasAnyAfter(t *testing.T) {
	var tr Track
	base := time.Unix(0, 0)
	tr.Append(base)

	if tr.HasAnyAfter(base) {
		t.Error("HasAnyAfter(last entry itself) = true, want false (strictly after)")
	}
	if !tr.HasAnyAfter(base.Add(-time.Second)) {
		t.Error("HasAnyAfter(before last entry) = false, want true")
	}
}

func TestEntriesIsACopy(t *testing.T) {
	var tr Track
	tr.Append(time.Unix(1, 0))
	entries := tr.Entries()
	entries[0] = time.Unix(99, 0)

	front, _ := tr.Front()
	if front.Equal(time.Unix(99, 0)) {
		t.Error("mutating Entries() result mutated the track")
	}
}
