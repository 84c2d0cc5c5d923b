package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/ceres/pkg/telemetry/logging"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. A missing file is not an error: the defaults are
// returned, so a fresh checkout runs without any configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	// True-by-default booleans are seeded before unmarshal so an explicit
	// false in the file survives.
	cfg.Classifier.Enabled = true
	cfg.Storage.WALMode = true

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies environment variable overrides in the form CERES_SECTION_FIELD
// (e.g. CERES_STORAGE_PATH). Environment variables take precedence over
// file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CERES_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}
	if val := os.Getenv("CERES_STORAGE_DRIVER"); val != "" {
		cfg.Storage.Driver = val
	}
	if val := os.Getenv("CERES_STORAGE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Storage.BusyTimeout = d
		}
	}
	if val := os.Getenv("CERES_POLICY_PATH"); val != "" {
		cfg.Policy.Path = val
	}
	if val := os.Getenv("CERES_CLASSIFIER_MODEL_PATH"); val != "" {
		cfg.Classifier.ModelPath = val
	}
	if val := os.Getenv("CERES_EVIDENCE_BASE_DIR"); val != "" {
		cfg.Evidence.BaseDir = val
	}
	if val := os.Getenv("CERES_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CERES_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = logging.Format(val)
	}
	if val := os.Getenv("CERES_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("CERES_SCHEDULER_REVERIFY_SCHEDULE"); val != "" {
		cfg.Scheduler.ReverifySchedule = val
	}
}
