package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	DBPath       string        `env:"PLUME_TEST_DB_PATH" envDefault:"data/test.db"`
	PollInterval time.Duration `env:"PLUME_TEST_POLL_INTERVAL" envDefault:"1m"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DBPath != "data/test.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("expected default poll interval, got %v", cfg.PollInterval)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PLUME_TEST_DB_PATH", "custom.db")
	t.Setenv("PLUME_TEST_POLL_INTERVAL", "15s")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DBPath != "custom.db" || cfg.PollInterval != 15*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PLUME_TEST_POLL_INTERVAL", "not-a-duration")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvWithOptionsIgnoresProcessEnv(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PLUME_TEST_DB_PATH", "process.db")

	err := ParseEnvWithOptions(&cfg, map[string]string{
		"PLUME_TEST_DB_PATH": "explicit.db",
	})
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DBPath != "explicit.db" {
		t.Fatalf("expected explicit map value, got %q", cfg.DBPath)
	}
}
