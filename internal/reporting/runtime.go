// Package reporting runs pluggable reporters against the published
// snapshot on their own cadence, tracking per-(reporter, record) progress
// so each reporter only ever sees a given signal once.
package reporting

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/relaypulse/beatkeeper/internal/model"
	"github.com/relaypulse/beatkeeper/internal/snapshot"
)

// controlPollInterval bounds how long the runtime waits for a control
// message before resuming reporter work.
const controlPollInterval = 1 * time.Second

type registerMsg struct{ reporter model.Reporter }

type stopReportersMsg struct{}

type wrapped struct {
	id       int
	reporter model.Reporter
	cadence  time.Duration
	lastRun  time.Time
}

type cursorKey struct {
	reporterID int
	record     model.RecordId
}

// Runtime owns the reporter list and their per-record cursors. It is not
// safe for concurrent use by anything other than its own goroutine; other
// components talk to it through its control channel.
type Runtime struct {
	control chan any
	done    chan struct{}
	snap    *snapshot.Map
	log     zerolog.Logger
}

// Start spawns the reporter runtime goroutine against snap.
func Start(snap *snapshot.Map, log zerolog.Logger) *Runtime {
	rt := &Runtime{
		control: make(chan any, 64),
		done:    make(chan struct{}),
		snap:    snap,
		log:     log,
	}
	go rt.run()
	return rt
}

// Stop ends the runtime goroutine, calling End on every registered
// reporter first.
func (rt *Runtime) Stop() {
	select {
	case <-rt.done:
	default:
		close(rt.done)
	}
}

// AddReporter registers a reporter with the runtime. Send failure means
// the runtime has already stopped.
func (rt *Runtime) AddReporter(r model.Reporter) error {
	select {
	case <-rt.done:
		return model.New("reporting.add_reporter", model.KindChannelSendFailure, "reporter runtime stopped")
	default:
	}
	select {
	case rt.control <- registerMsg{reporter: r}:
		return nil
	case <-rt.done:
		return model.New("reporting.add_reporter", model.KindChannelSendFailure, "reporter runtime stopped")
	}
}

// StopReporters deregisters every reporter, calling End on each, without
// stopping the runtime itself. Reporters added afterward start fresh.
func (rt *Runtime) StopReporters() error {
	select {
	case rt.control <- stopReportersMsg{}:
		return nil
	case <-rt.done:
		return model.New("reporting.stop_reporters", model.KindChannelSendFailure, "reporter runtime stopped")
	}
}

func (rt *Runtime) run() {
	var reporters []*wrapped
	var nextID int
	cursors := make(map[cursorKey]time.Time)

	defer func() {
		for _, w := range reporters {
			if err := w.reporter.End(); err != nil {
				rt.log.Warn().Err(err).Msg("reporter end failed")
			}
		}
	}()

	for {
		select {
		case raw := <-rt.control:
			switch msg := raw.(type) {
			case registerMsg:
				if err := msg.reporter.Init(); err != nil {
					rt.log.Warn().Err(err).Msg("reporter init failed, discarding")
					continue
				}
				nextID++
				reporters = append(reporters, &wrapped{
					id:       nextID,
					reporter: msg.reporter,
					cadence:  msg.reporter.Cadence(),
				})
			case stopReportersMsg:
				for _, w := range reporters {
					if err := w.reporter.End(); err != nil {
						rt.log.Warn().Err(err).Msg("reporter end failed")
					}
				}
				reporters = nil
				clear(cursors)
			}
			continue

		case <-time.After(controlPollInterval):
			// fall through to the reporter pass below

		case <-rt.done:
			return
		}

		if len(reporters) == 0 {
			continue
		}

		records := rt.snap.Clone()
		now := time.Now()

		for _, w := range reporters {
			if now.Before(w.lastRun.Add(w.cadence)) {
				continue
			}
			for id, record := range records {
				key := cursorKey{reporterID: w.id, record: id}
				since, seen := cursors[key]
				var sincePtr *time.Time
				if seen {
					sincePtr = &since
				}
				if !record.HasSignalSince(sincePtr) && seen {
					continue
				}

				if err := w.reporter.Run(record); err != nil && !model.Is(err, model.KindNothingNewToReport) {
					rt.log.Warn().Err(err).Int("record_id", int(id)).Msg("reporter run failed")
				}

				if last, ok := record.Track.Back(); ok {
					cursors[key] = last
				}
			}
			w.lastRun = now
		}
	}
}
