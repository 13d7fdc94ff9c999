// Package metrics exposes Prometheus instrumentation for the debug HTTP
// surface and a scrape-time view of the running facade's state.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/relaypulse/beatkeeper/internal/model"
)

const namespace = "beatkeeper"

// HTTP metrics (counter/histogram — incremented by middleware).
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Requests served by the debug surface.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPResponseSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_response_size_bytes",
		Help:      "Response size in bytes.",
		// The surface serves small JSON and a /metrics scrape; anything
		// past a few MB is pathological.
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"method", "route"})
)

// Monitor-lifecycle counters (incremented directly by the facade's
// callers, not scraped from the snapshot).
var (
	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total successful record registrations.",
	})

	RegistrationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_failures_total",
		Help:      "Registration attempts rejected, by error kind.",
	}, []string{"kind"})

	ReporterRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reporter_runs_total",
		Help:      "Reporter Run invocations, by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPResponseSize,
		RegistrationsTotal,
		RegistrationFailuresTotal,
		ReporterRunsTotal,
	)
}

// InstrumentReporter wraps a Reporter so every Run is counted by outcome
// ("ok", "nothing_new", "error") under ReporterRunsTotal.
func InstrumentReporter(r model.Reporter) model.Reporter {
	return &countedReporter{inner: r}
}

type countedReporter struct {
	inner model.Reporter
}

func (c *countedReporter) Cadence() time.Duration { return c.inner.Cadence() }
func (c *countedReporter) Init() error            { return c.inner.Init() }
func (c *countedReporter) End() error             { return c.inner.End() }

func (c *countedReporter) Run(record model.Record) error {
	err := c.inner.Run(record)
	switch {
	case err == nil:
		ReporterRunsTotal.WithLabelValues("ok").Inc()
	case model.Is(err, model.KindNothingNewToReport):
		ReporterRunsTotal.WithLabelValues("nothing_new").Inc()
	default:
		ReporterRunsTotal.WithLabelValues("error").Inc()
	}
	return err
}

// InstrumentHandler records count, latency, and response size for every
// request, labelled by chi's route pattern rather than the raw URL so
// /records/{id} stays one series no matter how many ids get probed.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			// Handler returned without writing a header.
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		HTTPResponseSize.WithLabelValues(r.Method, pattern).Observe(float64(ww.BytesWritten()))
	})
}
