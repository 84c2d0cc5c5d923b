package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/ceres/pkg/telemetry/logging"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Storage.Path != "data/ceres.db" {
		t.Errorf("storage path = %q", cfg.Storage.Path)
	}
	if cfg.Storage.Driver != "sqlite3" {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if !cfg.Storage.WALMode {
		t.Error("WAL mode should default to true")
	}
	if cfg.Policy.Path != "config/rules.yaml" {
		t.Errorf("policy path = %q", cfg.Policy.Path)
	}
	if !cfg.Classifier.Enabled {
		t.Error("classifier should default to enabled")
	}
	if cfg.Classifier.Thresholds.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Classifier.Thresholds.Seed)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != logging.FormatText {
		t.Errorf("logging defaults = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
storage:
  path: /tmp/custom.db
  driver: sqlite
  wal_mode: false
policy:
  path: /etc/ceres/rules.yaml
  watch: true
classifier:
  enabled: false
governance:
  count_superseded: true
telemetry:
  logging:
    level: debug
    format: json
scheduler:
  reverify_schedule: "0 3 * * *"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Storage.Path != "/tmp/custom.db" || cfg.Storage.Driver != "sqlite" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.WALMode {
		t.Error("explicit wal_mode: false must survive loading")
	}
	if !cfg.Policy.Watch {
		t.Error("policy watch not parsed")
	}
	if cfg.Classifier.Enabled {
		t.Error("explicit classifier enabled: false must survive loading")
	}
	if !cfg.Governance.CountSuperseded {
		t.Error("governance count_superseded not parsed")
	}
	if cfg.Telemetry.Logging.Format != logging.FormatJSON {
		t.Errorf("logging format = %q", cfg.Telemetry.Logging.Format)
	}
	if cfg.Scheduler.ReverifySchedule != "0 3 * * *" {
		t.Errorf("schedule = %q", cfg.Scheduler.ReverifySchedule)
	}
	// Unspecified values still default.
	if cfg.Storage.BusyTimeout != 5*time.Second {
		t.Errorf("busy timeout = %v, want default 5s", cfg.Storage.BusyTimeout)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CERES_STORAGE_PATH", "/tmp/env.db")
	t.Setenv("CERES_LOG_LEVEL", "debug")
	t.Setenv("CERES_SCHEDULER_REVERIFY_SCHEDULE", "30 2 * * *")

	cfg, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}
	if cfg.Storage.Path != "/tmp/env.db" {
		t.Errorf("storage path = %q, want env override", cfg.Storage.Path)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Scheduler.ReverifySchedule != "30 2 * * *" {
		t.Errorf("schedule = %q", cfg.Scheduler.ReverifySchedule)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = "postgres"
	cfg.Storage.Path = ""
	cfg.Classifier.Thresholds.PassAbove = 0.2
	cfg.Classifier.Thresholds.FailBelow = 0.9
	cfg.Scheduler.ReverifySchedule = "not cron"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %T, want ValidationError", err)
	}
	if len(vErr.Errors) < 4 {
		t.Errorf("got %d field errors, want all collected: %v", len(vErr.Errors), vErr)
	}

	fields := make(map[string]bool)
	for _, fe := range vErr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"storage.driver", "storage.path", "scheduler.reverify_schedule"} {
		if !fields[want] {
			t.Errorf("missing field error for %s in %v", want, fields)
		}
	}
}

func TestValidateEnvOverrideFailure(t *testing.T) {
	t.Setenv("CERES_STORAGE_DRIVER", "mysql")
	if _, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected validation failure for bad env driver")
	}
}
