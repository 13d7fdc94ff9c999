// Command beatdemo wires up a running monitor with a handful of
// simulated beating tasks, the InfluxDB reporter (when enabled), and the
// debug HTTP surface. It exists to exercise the library end to end, the
// way a real caller would: Register, signal on a ticker, watch the
// roster and /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaypulse/beatkeeper"
	"github.com/relaypulse/beatkeeper/internal/config"
	"github.com/relaypulse/beatkeeper/internal/httpdebug"
	"github.com/relaypulse/beatkeeper/internal/metrics"
	"github.com/relaypulse/beatkeeper/reporters/influx"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var overrides config.Overrides
	var showVersion bool
	var simulatedTasks int
	flag.StringVar(&overrides.EnvFile, "env-file", "", "Path to .env file (default: .env)")
	flag.StringVar(&overrides.HTTPAddr, "listen", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flag.IntVar(&simulatedTasks, "tasks", 5, "Number of simulated beating tasks to register")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("%s (commit=%s)\n", version, commit)
		os.Exit(0)
	}

	startTime := time.Now()

	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Str("commit", commit).Msg("beatkeeper starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	facade, err := beatkeeper.New(log.With().Str("component", "deck").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start monitor")
	}
	defer facade.Close()

	if cfg.EnableInflux {
		influxCfg, err := config.LoadInflux()
		if err != nil {
			log.Fatal().Err(err).Msg("ENABLE_INFLUX=true but influx config is invalid")
		}
		reporter := influx.New(influx.Options{
			URL:    influxCfg.URL,
			Token:  influxCfg.Token,
			Org:    influxCfg.Org,
			Bucket: influxCfg.Bucket,
			Log:    log.With().Str("component", "influx").Logger(),
		})
		if err := facade.AddReporter(metrics.InstrumentReporter(reporter)); err != nil {
			log.Fatal().Err(err).Msg("failed to register influx reporter")
		}
		log.Info().Str("bucket", influxCfg.Bucket).Msg("influx reporter enabled")
	}

	for i := 0; i < simulatedTasks; i++ {
		startSimulatedTask(ctx, facade, fmt.Sprintf("task-%d", i), log)
	}

	httpLog := log.With().Str("component", "http").Logger()
	srv := httpdebug.NewServer(httpdebug.Options{
		Addr:           cfg.HTTPAddr,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Facade:         facade,
		Log:            httpLog,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Info().Str("listen", cfg.HTTPAddr).Dur("startup_ms", time.Since(startTime)).Msg("beatkeeper ready")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("beatkeeper stopped")
}

// startSimulatedTask registers name and runs a goroutine that signals it
// at a jittered cadence, stopping when ctx is done. This is demo
// scaffolding only, standing in for whatever real producer a caller would
// have.
func startSimulatedTask(ctx context.Context, facade *beatkeeper.Facade, name string, log zerolog.Logger) {
	freq := time.Duration(500+rand.Intn(1500)) * time.Millisecond
	h, err := facade.Register(name, freq)
	if err != nil {
		var kerr *beatkeeper.Error
		kind := "unknown"
		if errors.As(err, &kerr) {
			kind = string(kerr.Kind)
		}
		metrics.RegistrationFailuresTotal.WithLabelValues(kind).Inc()
		log.Warn().Err(err).Str("task", name).Msg("failed to register simulated task")
		return
	}
	metrics.RegistrationsTotal.Inc()

	go func() {
		defer h.Close()
		ticker := time.NewTicker(freq)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := h.SignalNow(); err != nil {
					log.Warn().Err(err).Str("task", name).Msg("signal failed")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
