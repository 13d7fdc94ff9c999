package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/relaypulse/beatkeeper/internal/model"
)

func TestReplaceThenGet(t *testing.T) {
	m := New()
	rec := model.NewRecord(1, "worker", time.Second, time.Now())
	m.Replace(map[model.RecordId]model.Record{1: rec})

	got, ok := m.Get(1)
	if !ok {
		t.Fatal("Get() ok = false, want true after Replace")
	}
	if got.Name != "worker" {
		t.Errorf("Get().Name = %q, want worker", got.Name)
	}

	if _, ok := m.Get(2); ok {
		t.Error("Get(2) ok = true, want false for unpublished id")
	}
}

func TestCloneIsIndependentOfLaterReplace(t *testing.T) {
	m := New()
	m.Replace(map[model.RecordId]model.Record{1: model.NewRecord(1, "a", time.Second, time.Now())})

	clone := m.Clone()
	m.Replace(map[model.RecordId]model.Record{2: model.NewRecord(2, "b", time.Second, time.Now())})

	if _, ok := clone[1]; !ok {
		t.Error("clone lost record 1 after a later Replace, want snapshots to be independent")
	}
	if _, ok := clone[2]; ok {
		t.Error("clone gained record 2 after a later Replace, want snapshots to be independent")
	}
}

func TestRosterReflectsPublishedIds(t *testing.T) {
	m := New()
	m.Replace(map[model.RecordId]model.Record{
		1: model.NewRecord(1, "a", time.Second, time.Now()),
		2: model.NewRecord(2, "b", time.Second, time.Now()),
	})
	roster := m.Roster()
	if len(roster) != 2 {
		t.Fatalf("Roster() len = %d, want 2", len(roster))
	}
}

func TestConcurrentReadersDuringReplace(t *testing.T) {
	m := New()
	m.Replace(map[model.RecordId]model.Record{1: model.NewRecord(1, "a", time.Second, time.Now())})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					m.Clone()
					m.Get(1)
					m.Roster()
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		m.Replace(map[model.RecordId]model.Record{1: model.NewRecord(1, "a", time.Second, time.Now())})
	}
	close(stop)
	wg.Wait()
}
