package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MARKBOOK_PG_DSN", "postgres://localhost/markbook")
	t.Setenv("MARKBOOK_AUTH_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d", cfg.BcryptCost)
	}
	if cfg.TraceStdout {
		t.Fatal("TraceStdout should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MARKBOOK_PG_DSN", "postgres://localhost/markbook")
	t.Setenv("MARKBOOK_AUTH_SECRET", "s3cret")
	t.Setenv("MARKBOOK_LISTEN_ADDR", ":9090")
	t.Setenv("MARKBOOK_TOKEN_TTL", "30m")
	t.Setenv("MARKBOOK_TRACE_STDOUT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.TokenTTL != 30*time.Minute || !cfg.TraceStdout {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("MARKBOOK_PG_DSN", "postgres://localhost/markbook")
	t.Setenv("MARKBOOK_AUTH_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without signing secret")
	}
}
