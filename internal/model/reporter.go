package model

import "time"

// Reporter is a pluggable consumer that processes records on its own
// schedule. The reporter runtime calls Init once before the first Run,
// Run once per active record per tick (skipping records with nothing new
// to report), and End on shutdown.
type Reporter interface {
	// Cadence reports how often the runtime should invoke Run for this
	// reporter. A zero cadence means "as often as the runtime ticks".
	Cadence() time.Duration
	Init() error
	Run(record Record) error
	End() error
}
