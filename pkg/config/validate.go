package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/ceres/pkg/telemetry/logging"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "storage.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. All field errors are collected and returned together.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the entire configuration and returns a ValidationError
// if any rule fails.
func Validate(cfg *Config) error {
	var errs []FieldError

	switch cfg.Storage.Driver {
	case "sqlite3", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "storage.driver",
			Message: fmt.Sprintf("must be sqlite3 or sqlite, got %q", cfg.Storage.Driver),
		})
	}
	if cfg.Storage.Path == "" {
		errs = append(errs, FieldError{Field: "storage.path", Message: "must not be empty"})
	}
	if cfg.Storage.MaxOpenConns < 1 {
		errs = append(errs, FieldError{Field: "storage.max_open_conns", Message: "must be at least 1"})
	}
	if cfg.Storage.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "storage.busy_timeout", Message: "must not be negative"})
	}

	if cfg.Policy.Path == "" {
		errs = append(errs, FieldError{Field: "policy.path", Message: "must not be empty"})
	}
	if cfg.Policy.DebounceMillis < 0 {
		errs = append(errs, FieldError{Field: "policy.debounce_millis", Message: "must not be negative"})
	}

	errs = append(errs, validateClassifier(cfg)...)

	switch cfg.Telemetry.Logging.Format {
	case logging.FormatJSON, logging.FormatText:
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be json or text, got %q", cfg.Telemetry.Logging.Format),
		})
	}

	if s := cfg.Scheduler.ReverifySchedule; s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			errs = append(errs, FieldError{
				Field:   "scheduler.reverify_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateClassifier(cfg *Config) []FieldError {
	var errs []FieldError
	t := cfg.Classifier.Thresholds

	if t.Epochs < 1 {
		errs = append(errs, FieldError{Field: "classifier.thresholds.epochs", Message: "must be at least 1"})
	}
	if t.LearningRate <= 0 {
		errs = append(errs, FieldError{Field: "classifier.thresholds.learning_rate", Message: "must be positive"})
	}
	for field, v := range map[string]float64{
		"abstain_below": t.AbstainBelow,
		"pass_above":    t.PassAbove,
		"fail_below":    t.FailBelow,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, FieldError{
				Field:   "classifier.thresholds." + field,
				Message: "must be between 0 and 1",
			})
		}
	}
	if t.FailBelow >= t.PassAbove {
		errs = append(errs, FieldError{
			Field:   "classifier.thresholds.fail_below",
			Message: "must be lower than pass_above",
		})
	}
	return errs
}
