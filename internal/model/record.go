package model

import "time"

// RecordCap bounds the number of records the deck may hold concurrently.
const RecordCap = 1000

// RecordId identifies a registered record. Allocated densely in
// [0, RecordCap) by the deck's indexer.
type RecordId int

// ActivityRating is a discrete health classification derived from a
// record's observed cadence against its expected one.
type ActivityRating int

const (
	// NotOnce means the track is empty: no signal has ever arrived.
	NotOnce ActivityRating = iota
	// OnlyOnce means exactly one signal has arrived; there is no interval
	// to compare against the expected frequency yet.
	OnlyOnce
	// Optimal means the mean observed interval is within ±2% of freq.
	Optimal
	// NotOptimal means the mean observed interval is outside that band.
	NotOptimal
)

func (a ActivityRating) String() string {
	switch a {
	case NotOnce:
		return "NotOnce"
	case OnlyOnce:
		return "OnlyOnce"
	case Optimal:
		return "Optimal"
	case NotOptimal:
		return "NotOptimal"
	default:
		return "Unknown"
	}
}

// Record is the per-task state the deck owns: identity, expected cadence,
// and the bounded track of signals received so far. Derived values
// (ActivityRating, MeanInterval, ...) are always computed from Track, never
// cached.
type Record struct {
	Id         RecordId
	Name       string
	Freq       time.Duration
	Creation   time.Time
	Deployment time.Time
	Track      Track
}

// NewRecord creates a Record with its creation and deployment timestamps
// set to now. A freq of zero means the expected cadence is unknown.
func NewRecord(id RecordId, name string, freq time.Duration, now time.Time) Record {
	return Record{
		Id:         id,
		Name:       name,
		Freq:       freq,
		Creation:   now,
		Deployment: now,
	}
}

// Clone returns a deep copy whose Track does not share backing storage
// with r. The deck uses this when publishing a snapshot so later mutation
// of the live record can never be observed through a previously published
// copy.
func (r Record) Clone() Record {
	r.Track = Track{entries: r.Track.Entries()}
	return r
}

// AddSignal records a new timestamped signal.
func (r *Record) AddSignal(ts time.Time) { r.Track.Append(ts) }

// SetDeployment updates the deployment timestamp.
func (r *Record) SetDeployment(ts time.Time) { r.Deployment = ts }

// SetExpectedFreq updates the expected inter-signal duration.
func (r *Record) SetExpectedFreq(d time.Duration) { r.Freq = d }

// HasSignalSince reports whether a signal strictly newer than since has
// arrived. A nil since always returns false (there is no "since the
// beginning of time" request in this API — callers asking for "any signal
// at all" should look at Track.Len instead).
func (r Record) HasSignalSince(since *time.Time) bool {
	if since == nil {
		return false
	}
	return r.Track.HasAnyAfter(*since)
}

// SignalsSince returns the signals strictly after since, in insertion
// order. A nil since returns every signal.
func (r Record) SignalsSince(since *time.Time) []time.Time {
	w, ok := r.Track.Window(since, nil)
	if !ok {
		return nil
	}
	return w.Entries()
}

// IntervalsSince returns the inter-signal durations among the signals
// strictly after since.
func (r Record) IntervalsSince(since *time.Time) []time.Duration {
	w, ok := r.Track.Window(since, nil)
	if !ok {
		return nil
	}
	return Intervals(w)
}

// MeanInterval returns the mean inter-signal duration, including a
// tail-to-now correction so a record that has gone quiet drifts toward
// NotOptimal rather than appearing frozen at its last good reading. The
// second return value is false only when the track is empty.
func (r Record) MeanInterval() (time.Duration, bool) {
	return r.meanIntervalAt(time.Now())
}

func (r Record) meanIntervalAt(now time.Time) (time.Duration, bool) {
	n := r.Track.Len()
	if n < 1 {
		return 0, false
	}
	if n == 1 {
		return 0, true
	}

	var sum time.Duration
	for _, iv := range Intervals(r.Track) {
		sum += iv
	}
	denom := n - 1

	last, _ := r.Track.Back()
	if !now.Before(last) {
		sum += now.Sub(last)
		denom++
	}
	return sum / time.Duration(denom), true
}

// MeanDiff returns mean_interval minus Freq, in milliseconds. The second
// return value is false when MeanInterval is absent.
func (r Record) MeanDiff() (int64, bool) {
	return r.meanDiffAt(time.Now())
}

func (r Record) meanDiffAt(now time.Time) (int64, bool) {
	mean, ok := r.meanIntervalAt(now)
	if !ok {
		return 0, false
	}
	return mean.Milliseconds() - r.Freq.Milliseconds(), true
}

// ActivityRating classifies the record's current health.
func (r Record) ActivityRating() ActivityRating {
	return r.activityRatingAt(time.Now())
}

func (r Record) activityRatingAt(now time.Time) ActivityRating {
	mean, ok := r.meanIntervalAt(now)
	if !ok {
		return NotOnce
	}
	if mean == 0 {
		return OnlyOnce
	}

	expected := r.Freq.Milliseconds()
	margin := int64(float64(expected) * 0.02)
	lo, hi := expected-margin, expected+margin
	n := mean.Milliseconds()
	if n >= lo && n <= hi {
		return Optimal
	}
	return NotOptimal
}

// IsOptimal is a convenience check for ActivityRating() == Optimal.
func (r Record) IsOptimal() bool {
	return r.ActivityRating() == Optimal
}

// GuessFreq estimates an expected frequency from the track's history, for
// records registered before their cadence is known. It does not replace
// the registration-time Freq requirement; callers may feed the result into
// SetExpectedFreq once they're satisfied with it.
func (r Record) GuessFreq() (time.Duration, bool) {
	entries := r.Track.Entries()
	switch len(entries) {
	case 0:
		return 0, false
	case 1:
		return nonNegative(entries[0], r.Deployment), true
	case 2:
		return nonNegative(entries[0], entries[1]), true
	default:
		var sum time.Duration
		intervals := Intervals(r.Track)
		for _, iv := range intervals {
			sum += iv
		}
		return sum / time.Duration(len(intervals)), true
	}
}

// nonNegative returns b-a, or zero if that would be negative (the producer
// passed clock-skewed timestamps).
func nonNegative(a, b time.Time) time.Duration {
	if b.Before(a) {
		return 0
	}
	return b.Sub(a)
}
