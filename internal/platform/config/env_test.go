package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port  int    `env:"GMWORKSPACE_TEST_PORT" envDefault:"123"`
	Stage string `env:"GMWORKSPACE_TEST_STAGE" envDefault:"prep"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Stage != "prep" {
		t.Fatalf("expected default stage prep, got %q", cfg.Stage)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("GMWORKSPACE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvFromUsesExplicitMap(t *testing.T) {
	t.Parallel()

	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, map[string]string{"GMWORKSPACE_TEST_STAGE": "live"}); err != nil {
		t.Fatalf("parse env from map: %v", err)
	}
	if cfg.Stage != "live" {
		t.Fatalf("stage = %q, want %q", cfg.Stage, "live")
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want default 123", cfg.Port)
	}
}

func TestParseEnvFromNilMapAppliesDefaults(t *testing.T) {
	t.Parallel()

	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, nil); err != nil {
		t.Fatalf("parse env from nil map: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want 123", cfg.Port)
	}
}
