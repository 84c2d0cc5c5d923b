package config

import (
	"mercator-hq/ceres/pkg/classifier"
	"mercator-hq/ceres/pkg/governance"
	"mercator-hq/ceres/pkg/storage"
	"mercator-hq/ceres/pkg/telemetry/logging"
)

// Config is the root configuration structure for Ceres. It contains all
// configuration sections for storage, the policy engine, the fallback
// classifier, evidence checking, governance, telemetry, and the
// re-verification scheduler.
type Config struct {
	// Storage contains SQLite storage configuration including database
	// path, driver selection, and connection settings.
	Storage storage.SQLiteConfig `yaml:"storage"`

	// Policy contains configuration for the rule policy source.
	Policy PolicyConfig `yaml:"policy"`

	// Classifier contains configuration for the fallback classifier
	// including decision thresholds and the trained-model path.
	Classifier ClassifierConfig `yaml:"classifier"`

	// Evidence contains configuration for certificate evidence checking.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Governance controls statistics computation.
	Governance governance.Config `yaml:"governance"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Scheduler contains the periodic re-verification schedule.
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// PolicyConfig contains configuration for the rule policy source.
type PolicyConfig struct {
	// Path is the YAML policy file holding the ordered rule list.
	// Default: "config/rules.yaml"
	Path string `yaml:"path"`

	// Watch enables hot reload of the policy file on change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceMillis is the delay before reloading after a file event,
	// coalescing editor write bursts. Default: 200
	DebounceMillis int `yaml:"debounce_millis"`
}

// ClassifierConfig contains configuration for the fallback classifier.
type ClassifierConfig struct {
	// Enabled turns the fallback classifier on. When disabled, claims
	// with no rule match get a degraded REVIEW verdict.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ModelPath is where the trained model is persisted as JSON. Empty
	// means the model is trained in memory at startup and not saved.
	ModelPath string `yaml:"model_path"`

	// Thresholds override the classifier decision boundaries.
	Thresholds classifier.Config `yaml:"thresholds"`
}

// EvidenceConfig contains configuration for certificate evidence checking.
type EvidenceConfig struct {
	// BaseDir, when set, makes the checker verify that referenced
	// certificate files actually exist under this directory. Empty
	// disables existence checks and trusts the references.
	BaseDir string `yaml:"base_dir"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging logging.Config `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns the metrics listener on. Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP listener.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`
}

// SchedulerConfig contains the periodic re-verification schedule.
type SchedulerConfig struct {
	// ReverifySchedule is a standard cron expression for full
	// re-verification sweeps (e.g. "0 3 * * *"). Empty disables the
	// scheduler. Default: ""
	ReverifySchedule string `yaml:"reverify_schedule"`
}
