//go:build !integration

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fieldops-assignment/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults on a minimal file", func(t *testing.T) {
		path := writeConfig(t, `
database:
  url: postgres://localhost:5432/fieldops
redis:
  url: redis://localhost:6379
`)
		cfg, err := config.LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("unexpected log defaults: %+v", cfg.Log)
		}
		if cfg.API.Port != 8080 {
			t.Errorf("expected default port 8080, got %d", cfg.API.Port)
		}
		if cfg.Assignment.ExpectedConcurrentUsers != 200 {
			t.Errorf("expected default 200 users, got %d", cfg.Assignment.ExpectedConcurrentUsers)
		}
		if cfg.Assignment.MaxAttempts != 5 {
			t.Errorf("expected default 5 attempts, got %d", cfg.Assignment.MaxAttempts)
		}
		if cfg.Assignment.BackoffBase != 30*time.Second {
			t.Errorf("expected default 30s backoff base, got %s", cfg.Assignment.BackoffBase)
		}
		if cfg.Assignment.SubBatchDelay != 100*time.Millisecond {
			t.Errorf("expected default 100ms sub-batch delay, got %s", cfg.Assignment.SubBatchDelay)
		}
	})

	t.Run("should keep explicit values", func(t *testing.T) {
		path := writeConfig(t, `
log:
  level: debug
  format: console
database:
  url: postgres://localhost:5432/fieldops
  max_conns: 25
redis:
  url: redis://localhost:6379
api:
  port: 9090
  token: secret
assignment:
  expected_concurrent_users: 2000
  max_bulk_size: 300
  poll_interval: 250ms
`)
		cfg, err := config.LoadConfig(path, true)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if cfg.Database.MaxConns != 25 {
			t.Errorf("expected 25 max conns, got %d", cfg.Database.MaxConns)
		}
		if cfg.API.Port != 9090 || cfg.API.Token != "secret" {
			t.Errorf("unexpected api config: %+v", cfg.API)
		}
		if cfg.Assignment.PollInterval != 250*time.Millisecond {
			t.Errorf("expected 250ms poll interval, got %s", cfg.Assignment.PollInterval)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected Runtime.Dev set")
		}
	})

	t.Run("should reject a file without a database url", func(t *testing.T) {
		path := writeConfig(t, `
redis:
  url: redis://localhost:6379
`)
		if _, err := config.LoadConfig(path, false); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("should reject a missing file", func(t *testing.T) {
		if _, err := config.LoadConfig("/does/not/exist.yaml", false); err == nil {
			t.Fatal("expected an error")
		}
	})
}
