// Package config defines the YAML configuration surface for Ceres.
//
// Loading applies defaults, optional CERES_* environment overrides, and
// validation; a missing config file yields the defaults so the tool runs
// on a fresh checkout. Validation collects all field errors rather than
// stopping at the first.
package config
