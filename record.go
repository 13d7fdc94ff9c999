package beatkeeper

import (
	"time"

	"github.com/relaypulse/beatkeeper/internal/model"
)

// RecordCap is the maximum number of records the deck holds concurrently.
const RecordCap = model.RecordCap

// BeatCap is the maximum number of signal timestamps a single record's
// track remembers.
const BeatCap = model.BeatCap

// RecordId identifies a registered record.
type RecordId = model.RecordId

// ActivityRating classifies a record's observed cadence against its
// expected one.
type ActivityRating = model.ActivityRating

const (
	NotOnce    = model.NotOnce
	OnlyOnce   = model.OnlyOnce
	Optimal    = model.Optimal
	NotOptimal = model.NotOptimal
)

// Record is a read-only, point-in-time view of one registered task: its
// identity, expected cadence, and recent signal history. Values returned
// from GetRecord are snapshots; they do not update in place.
type Record = model.Record

// Track is the bounded FIFO of signal timestamps carried by each Record.
type Track = model.Track

// CadenceIter streams the inter-signal durations of a Track.
type CadenceIter = model.CadenceIter

// NewCadenceIter returns an iterator over t's inter-signal durations.
func NewCadenceIter(t Track) *CadenceIter { return model.NewCadenceIter(t) }

// Intervals collects every inter-signal duration of t into a slice.
func Intervals(t Track) []time.Duration { return model.Intervals(t) }

// Reporter is the interface a caller implements to consume records on its
// own cadence via AddReporter.
type Reporter = model.Reporter
