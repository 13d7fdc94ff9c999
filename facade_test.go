package beatkeeper

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	f, err := New(zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	f := newTestFacade(t)
	if _, err := f.Register("", time.Second); !IsKind(err, KindBadRegistration) {
		t.Errorf("Register(\"\") err = %v, want KindBadRegistration", err)
	}
}

func TestRegisterRejectsNonPositiveFreq(t *testing.T) {
	f := newTestFacade(t)
	if _, err := f.Register("x", 0); !IsKind(err, KindBadRegistration) {
		t.Errorf("Register(freq=0) err = %v, want KindBadRegistration", err)
	}
	if _, err := f.Register("x", -time.Second); !IsKind(err, KindBadRegistration) {
		t.Errorf("Register(freq<0) err = %v, want KindBadRegistration", err)
	}
}

func TestGetRecordMissing(t *testing.T) {
	f := newTestFacade(t)
	if _, err := f.GetRecord(999); !IsKind(err, KindMissingRecord) {
		t.Errorf("GetRecord() err = %v, want KindMissingRecord", err)
	}
}

func TestGetRosterEmpty(t *testing.T) {
	f := newTestFacade(t)
	if _, err := f.GetRoster(); !IsKind(err, KindEmptyRoster) {
		t.Errorf("GetRoster() err = %v, want KindEmptyRoster", err)
	}
}

func TestRegisterThenGetRecordEventuallyVisible(t *testing.T) {
	f := newTestFacade(t)
	h, err := f.Register("worker", time.Second)
	if err != nil {
		t.Fatalf("Register() err = %v", err)
	}
	defer h.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rec, err := f.GetRecord(h.Id()); err == nil && rec.Name == "worker" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("registered record never became visible via GetRecord")
}

func TestRegisterExhaustsCapacity(t *testing.T) {
	f := newTestFacade(t)

	// Keep every handle referenced: a collected handle's finalizer
	// unregisters it, which would free up capacity mid-test.
	handles := make([]*Handle, 0, RecordCap)
	for i := 0; i < RecordCap; i++ {
		h, err := f.Register("x", time.Second)
		if err != nil {
			t.Fatalf("Register() #%d err = %v", i, err)
		}
		handles = append(handles, h)
	}
	if _, err := f.Register("overflow", time.Second); !IsKind(err, KindCapacityExhausted) {
		t.Errorf("Register() past capacity err = %v, want KindCapacityExhausted", err)
	}

	// Releasing any one id makes registration possible again.
	if err := handles[500].Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h, err := f.Register("replacement", time.Second)
		if err == nil {
			handles[500] = h
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("Register() never succeeded after freeing one id")
}

func TestProducersWithDistinctCadences(t *testing.T) {
	f := newTestFacade(t)

	handles := make([]*Handle, 0, 5)
	base := time.Now().Add(-time.Hour)

	var wg sync.WaitGroup
	for i := 1; i <= 5; i++ {
		h, err := f.Register(fmt.Sprintf("task-%d", i), time.Duration(i)*time.Second)
		if err != nil {
			t.Fatalf("Register(task-%d) err = %v", i, err)
		}
		handles = append(handles, h)

		wg.Add(1)
		go func(h *Handle, beats int) {
			defer wg.Done()
			for j := 0; j < beats; j++ {
				if err := h.SignalAt(base.Add(time.Duration(j) * time.Second)); err != nil {
					t.Errorf("SignalAt() err = %v", err)
				}
			}
		}(h, i)
	}
	wg.Wait()

	settled := func() bool {
		roster, err := f.GetRoster()
		if err != nil || len(roster) != 5 {
			return false
		}
		for i, h := range handles {
			rec, err := f.GetRecord(h.Id())
			if err != nil || rec.Track.Len() != i+1 {
				return false
			}
		}
		return true
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if settled() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}

	roster, _ := f.GetRoster()
	t.Fatalf("roster/tracks never settled: roster len %d, want 5 with track lengths 1..5", len(roster))
}

func TestNewWithReportingAcceptsReporters(t *testing.T) {
	f, err := NewWithReporting(zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWithReporting() err = %v", err)
	}
	t.Cleanup(func() { f.Close() })

	if err := f.AddReporter(&nopReporter{}); err != nil {
		t.Errorf("AddReporter() err = %v", err)
	}
}

type nopReporter struct{}

func (nopReporter) Cadence() time.Duration { return time.Second }
func (nopReporter) Init() error            { return nil }
func (nopReporter) Run(Record) error       { return nil }
func (nopReporter) End() error             { return nil }

func TestUnregisterViaFacade(t *testing.T) {
	f := newTestFacade(t)
	h, err := f.Register("temp", time.Second)
	if err != nil {
		t.Fatalf("Register() err = %v", err)
	}
	if err := f.Unregister(h.Id()); err != nil {
		t.Fatalf("Unregister() err = %v", err)
	}
	if err := f.Unregister(h.Id()); err != nil {
		t.Errorf("second Unregister() err = %v, want nil no-op", err)
	}
}
