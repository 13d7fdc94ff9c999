// Package httpdebug serves a small read-only HTTP surface over a running
// monitor: Prometheus metrics plus roster/record introspection for
// operators and dashboards. It carries no write endpoints and no auth.
package httpdebug

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/relaypulse/beatkeeper"
	"github.com/relaypulse/beatkeeper/internal/metrics"
)

// Server serves the debug HTTP surface.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// Options configures NewServer.
type Options struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	Facade         *beatkeeper.Facade
	Log            zerolog.Logger
}

// NewServer builds the debug server's router and underlying http.Server,
// registering a Collector over Facade's snapshot with the default
// Prometheus registry.
func NewServer(opts Options) *Server {
	r := chi.NewRouter()
	r.Use(requestLogging(opts.Log))
	r.Use(recoverer)
	r.Use(rateLimiter(opts.RateLimitRPS, opts.RateLimitBurst))
	r.Use(metrics.InstrumentHandler)

	prometheus.MustRegister(metrics.NewCollector(opts.Facade.Snapshot()))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	h := &handlers{facade: opts.Facade}
	r.Get("/roster", h.roster)
	r.Get("/records/{id}", h.record)

	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return &Server{http: srv, log: opts.Log}
}

// Start runs the server until it is shut down, swallowing the expected
// http.ErrServerClosed.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("debug http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("debug http server shutting down")
	return s.http.Shutdown(ctx)
}

type handlers struct {
	facade *beatkeeper.Facade
}

func (h *handlers) roster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.facade.GetRoster()
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (h *handlers) record(w http.ResponseWriter, r *http.Request) {
	id, err := pathRecordID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := h.facade.GetRecord(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, recordView{
		Id:        rec.Id,
		Name:      rec.Name,
		Freq:      rec.Freq.String(),
		Rating:    rec.ActivityRating().String(),
		BeatCount: rec.Track.Len(),
	})
}

func pathRecordID(r *http.Request) (beatkeeper.RecordId, error) {
	v := chi.URLParam(r, "id")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return beatkeeper.RecordId(n), nil
}

type recordView struct {
	Id        beatkeeper.RecordId `json:"id"`
	Name      string              `json:"name"`
	Freq      string              `json:"freq"`
	Rating    string              `json:"rating"`
	BeatCount int                 `json:"beat_count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error shape for every failure on this surface.
// Kind carries the monitor's tagged error category when there is one, so
// a caller can match on "missing_record" instead of parsing the message.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: err.Error()}
	var kerr *beatkeeper.Error
	if errors.As(err, &kerr) {
		body.Kind = string(kerr.Kind)
	}
	writeJSON(w, status, body)
}
