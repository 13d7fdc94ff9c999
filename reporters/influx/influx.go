// Package influx is a persistence Reporter that writes each record's new
// beats to InfluxDB's HTTP line-protocol write endpoint. It is deliberately
// built on net/http rather than a dedicated client library: no InfluxDB
// SDK has a stable enough surface to be worth the dependency, so a raw
// POST with the line-protocol body is simpler to keep working.
//
// Connection settings come from B_TOKEN, B_ORG, and B_BUCKET specifically
// (not INFLUX_*) — this is the boundary contract callers build against.
package influx

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaypulse/beatkeeper/internal/model"
)

// Options configures a Reporter instance.
type Options struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	// Name tags every written point (the InfluxDB measurement name).
	// Defaults to "beatkeeper" when empty.
	Name string
	Log  zerolog.Logger

	// Client lets callers supply a custom *http.Client (timeouts,
	// transport). Defaults to http.DefaultClient.
	Client *http.Client
}

// Reporter writes new beats to InfluxDB on each run. It keeps its own
// per-record high-water mark, independent of the reporter runtime's
// cursor, because Run receives a full record snapshot each time and must
// know which of its beats it has already written.
type Reporter struct {
	addr, name, token, org, bucket string
	client                         *http.Client
	log                            zerolog.Logger

	seen         map[model.RecordId]bool
	lastReported map[model.RecordId]time.Time
}

// New builds a Reporter from opts.
func New(opts Options) *Reporter {
	name := opts.Name
	if name == "" {
		name = "beatkeeper"
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Reporter{
		addr:         opts.URL,
		name:         name,
		token:        opts.Token,
		org:          opts.Org,
		bucket:       opts.Bucket,
		client:       client,
		log:          opts.Log,
		seen:         make(map[model.RecordId]bool),
		lastReported: make(map[model.RecordId]time.Time),
	}
}

// Cadence runs this reporter once a second.
func (r *Reporter) Cadence() time.Duration { return time.Second }

func (r *Reporter) Init() error { return nil }

func (r *Reporter) End() error { return nil }

// Run writes every beat newer than this record's last reported one. A
// record with nothing new returns NothingNewToReport so the runtime logs
// nothing for the common case.
func (r *Reporter) Run(record model.Record) error {
	var since *time.Time
	if r.seen[record.Id] {
		t := r.lastReported[record.Id]
		since = &t
	}

	beats := record.SignalsSince(since)
	if len(beats) == 0 {
		return model.New("influx.run", model.KindNothingNewToReport, "no new beats")
	}

	addr := fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s", r.addr, url.QueryEscape(r.org), url.QueryEscape(r.bucket))
	auth := "Token " + r.token

	var latest time.Time
	for _, beat := range beats {
		line := fmt.Sprintf("%s,beatname=%s expected=%d %d", r.name, record.Name, int64(record.Freq.Seconds()), beat.UnixNano())
		req, err := http.NewRequest(http.MethodPost, addr, strings.NewReader(line))
		if err != nil {
			return model.Wrap("influx.run", model.KindHTTPClient, err)
		}
		req.Header.Set("Authorization", auth)

		resp, err := r.client.Do(req)
		if err != nil {
			return model.Wrap("influx.run", model.KindHTTPClient, err)
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			return model.New("influx.run", model.KindHTTPClient, fmt.Sprintf("influx write failed: %s", resp.Status))
		}

		if beat.After(latest) {
			latest = beat
		}
	}

	r.lastReported[record.Id] = latest
	r.seen[record.Id] = true
	return nil
}
