package config

import (
	"mercator-hq/ceres/pkg/classifier"
	"mercator-hq/ceres/pkg/storage"
	"mercator-hq/ceres/pkg/telemetry/logging"
)

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Classifier.Enabled = true
	cfg.Storage.WALMode = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Explicitly
// set values are never overwritten, with one exception: classifier
// thresholds are only defaulted as a block when all of them are zero, so a
// partially specified threshold section is caught by validation instead of
// silently mixed with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = storage.DefaultSQLiteConfig().Path
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite3"
	}
	if cfg.Storage.MaxOpenConns == 0 {
		cfg.Storage.MaxOpenConns = 10
	}
	if cfg.Storage.MaxIdleConns == 0 {
		cfg.Storage.MaxIdleConns = 5
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = storage.DefaultSQLiteConfig().BusyTimeout
	}

	if cfg.Policy.Path == "" {
		cfg.Policy.Path = "config/rules.yaml"
	}
	if cfg.Policy.DebounceMillis == 0 {
		cfg.Policy.DebounceMillis = 200
	}

	if cfg.Classifier.Thresholds == (classifier.Config{}) {
		cfg.Classifier.Thresholds = *classifier.DefaultConfig()
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = logging.FormatText
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = "127.0.0.1:9090"
	}
}
