// Package config loads the demo binary's and the influx reporter's
// settings from environment variables and an optional .env file.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting for cmd/beatdemo.
type Config struct {
	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// EnableInflux turns on the InfluxDB reporter, which additionally
	// requires B_TOKEN/B_ORG/B_BUCKET to be set.
	EnableInflux bool `env:"ENABLE_INFLUX" envDefault:"false"`
}

// InfluxConfig holds the persistence reporter's connection settings. Its
// env tags use the variable names B_TOKEN/B_ORG/B_BUCKET verbatim, the
// boundary contract this reporter was built against.
type InfluxConfig struct {
	URL    string `env:"B_URL" envDefault:"http://localhost:8086"`
	Token  string `env:"B_TOKEN,required"`
	Org    string `env:"B_ORG,required"`
	Bucket string `env:"B_BUCKET,required"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile  string
	HTTPAddr string
	LogLevel string
}

// Load reads Config from .env file, environment variables, and CLI
// overrides, in that increasing priority order.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	return cfg, nil
}

// LoadInflux reads InfluxConfig from the environment. Call only when
// EnableInflux is set, so a missing B_TOKEN/B_ORG/B_BUCKET surfaces as a
// startup error rather than a silently disabled reporter.
func LoadInflux() (*InfluxConfig, error) {
	cfg := &InfluxConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
