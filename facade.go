// Package beatkeeper is an in-process liveness and cadence monitor for
// concurrent workers. Each monitored task registers once to receive a
// Handle, and calls SignalNow on it each time it completes a beat of work.
// A background deck aggregates those signals per task into a bounded
// history and derives an ActivityRating comparing observed cadence to the
// task's expected frequency. Readers (metrics exporters, debug endpoints,
// pluggable Reporters) observe that state through snapshots that never
// contend with the deck itself.
package beatkeeper

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaypulse/beatkeeper/internal/deck"
	"github.com/relaypulse/beatkeeper/internal/model"
	"github.com/relaypulse/beatkeeper/internal/reporting"
	"github.com/relaypulse/beatkeeper/internal/snapshot"
)

// Facade is the entry point to a running monitor. Construct one with New
// and keep it for the lifetime of the process; call Close on shutdown.
type Facade struct {
	deck *deck.Deck
	snap *snapshot.Map
	log  zerolog.Logger

	reportOnce sync.Once
	reporter   *reporting.Runtime
}

// New starts the deck goroutine and returns a Facade bound to it.
func New(log zerolog.Logger) (*Facade, error) {
	d := deck.Start(log)
	snap, err := d.Init()
	if err != nil {
		d.Stop()
		return nil, err
	}
	return &Facade{deck: d, snap: snap, log: log}, nil
}

// NewWithReporting starts the deck and the reporter runtime together, for
// callers that know up front they will add reporters. Functionally
// equivalent to New followed by the first AddReporter, minus the lazy
// start.
func NewWithReporting(log zerolog.Logger) (*Facade, error) {
	f, err := New(log)
	if err != nil {
		return nil, err
	}
	f.reportOnce.Do(func() {
		f.reporter = reporting.Start(f.snap, f.log)
	})
	return f, nil
}

// Register creates a new record for name with expected frequency freq and
// returns a Handle the caller uses to signal beats for it. Both an empty
// name and a zero freq are rejected as BadRegistration: every record has a
// known expected cadence from the moment it exists, by design — there is
// no "frequency unknown yet" registration path.
func (f *Facade) Register(name string, freq time.Duration) (*Handle, error) {
	if name == "" {
		return nil, model.New("register", model.KindBadRegistration, "name must not be empty")
	}
	if freq <= 0 {
		return nil, model.New("register", model.KindBadRegistration, "freq must be greater than zero")
	}
	id, err := f.deck.Register(name, freq)
	if err != nil {
		return nil, err
	}
	return newHandle(f.deck, id), nil
}

// Unregister removes a record by id. Unregistering an id that is already
// gone is a no-op, not an error.
func (f *Facade) Unregister(id RecordId) error {
	return f.deck.Unregister(id)
}

// GetRecord returns the most recently published snapshot of id's record.
func (f *Facade) GetRecord(id RecordId) (Record, error) {
	r, ok := f.snap.Get(id)
	if !ok {
		return Record{}, model.New("get_record", model.KindMissingRecord, "no record with this id")
	}
	return r, nil
}

// GetRoster lists every currently registered record id, as of the most
// recent snapshot publication.
func (f *Facade) GetRoster() ([]RecordId, error) {
	roster := f.snap.Roster()
	if len(roster) == 0 {
		return nil, model.New("get_roster", model.KindEmptyRoster, "no records registered")
	}
	return roster, nil
}

// AddReporter registers report with the reporter runtime, starting that
// runtime on first use. Reporters run against the same published snapshot
// the facade reads from.
func (f *Facade) AddReporter(report Reporter) error {
	f.reportOnce.Do(func() {
		f.reporter = reporting.Start(f.snap, f.log)
	})
	return f.reporter.AddReporter(report)
}

// Snapshot exposes the facade's published record map to internal
// infrastructure that needs direct read access without the Missing/Empty
// error wrapping GetRecord and GetRoster apply — namely the Prometheus
// collector, which must report zero values instead of errors when asked
// about an empty monitor.
func (f *Facade) Snapshot() *snapshot.Map {
	return f.snap
}

// Close stops the deck and, if started, the reporter runtime. Handles
// issued before Close remain usable to call but their sends will fail with
// ChannelSendFailure.
func (f *Facade) Close() error {
	if f.reporter != nil {
		f.reporter.Stop()
	}
	f.deck.Stop()
	return nil
}
