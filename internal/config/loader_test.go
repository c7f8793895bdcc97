package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Billing.DueDay != 5 {
		t.Fatalf("expected default due day 5, got %d", cfg.Billing.DueDay)
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaseforge.yaml")
	yaml := `
server:
  port: "9090"
billing:
  due_day: 1
  commission_rate: "0.10"
cache:
  stats_ttl: 1m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Billing.DueDay != 1 {
		t.Fatalf("expected due day 1, got %d", cfg.Billing.DueDay)
	}
	if cfg.Cache.StatsTTL != time.Minute {
		t.Fatalf("expected stats ttl 1m, got %v", cfg.Cache.StatsTTL)
	}
	// Untouched fields keep defaults.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Fatalf("expected default NATS URL, got %q", cfg.NATS.URL)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	t.Setenv("LEASEFORGE_PORT", "7070")
	t.Setenv("LEASEFORGE_BILLING_DUE_DAY", "3")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected port 7070, got %q", cfg.Server.Port)
	}
	if cfg.Billing.DueDay != 3 {
		t.Fatalf("expected due day 3, got %d", cfg.Billing.DueDay)
	}
}

func TestValidateRejectsBadDueDay(t *testing.T) {
	t.Setenv("LEASEFORGE_BILLING_DUE_DAY", "31")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for due day past 28")
	}
}

func TestValidateRejectsBadCommissionRate(t *testing.T) {
	t.Setenv("LEASEFORGE_COMMISSION_RATE", "five percent")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for non-numeric commission rate")
	}
}
