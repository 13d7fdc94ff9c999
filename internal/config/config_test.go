package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if cfg.RateLimitRPS != 20 {
			t.Errorf("RateLimitRPS = %v, want 20", cfg.RateLimitRPS)
		}
		if cfg.EnableInflux {
			t.Error("EnableInflux = true, want false")
		}
	})

	t.Run("cli_overrides_take_priority", func(t *testing.T) {
		cleanup := setEnvs(t, map[string]string{"HTTP_ADDR": ":7070", "LOG_LEVEL": "warn"})
		defer cleanup()

		cfg, err := Load(Overrides{
			EnvFile:  "nonexistent.env",
			HTTPAddr: ":9090",
			LogLevel: "debug",
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
	})

	t.Run("env_vars_read", func(t *testing.T) {
		cleanup := setEnvs(t, map[string]string{"HTTP_ADDR": ":7070"})
		defer cleanup()

		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":7070" {
			t.Errorf("HTTPAddr = %q, want :7070", cfg.HTTPAddr)
		}
	})
}

func TestLoadInflux(t *testing.T) {
	t.Run("missing_required", func(t *testing.T) {
		cleanup := setEnvs(t, map[string]string{"B_TOKEN": "", "B_ORG": "", "B_BUCKET": ""})
		defer cleanup()
		os.Unsetenv("B_TOKEN")
		os.Unsetenv("B_ORG")
		os.Unsetenv("B_BUCKET")

		if _, err := LoadInflux(); err == nil {
			t.Error("expected error when B_TOKEN/B_ORG/B_BUCKET are missing")
		}
	})

	t.Run("reads_env", func(t *testing.T) {
		cleanup := setEnvs(t, map[string]string{
			"B_TOKEN":  "secret",
			"B_ORG":    "myorg",
			"B_BUCKET": "beats",
		})
		defer cleanup()

		cfg, err := LoadInflux()
		if err != nil {
			t.Fatalf("LoadInflux: %v", err)
		}
		if cfg.Token != "secret" || cfg.Org != "myorg" || cfg.Bucket != "beats" {
			t.Errorf("LoadInflux = %+v, want secret/myorg/beats", cfg)
		}
	})
}

// setEnvs sets environment variables and returns a cleanup function.
func setEnvs(t *testing.T, envs map[string]string) func() {
	t.Helper()
	originals := make(map[string]string)
	unset := make([]string, 0)

	for k, v := range envs {
		if orig, ok := os.LookupEnv(k); ok {
			originals[k] = orig
		} else {
			unset = append(unset, k)
		}
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range originals {
			os.Setenv(k, v)
		}
		for _, k := range unset {
			os.Unsetenv(k)
		}
	}
}
