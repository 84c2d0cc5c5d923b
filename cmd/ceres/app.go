package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/classifier"
	"mercator-hq/ceres/pkg/cli"
	"mercator-hq/ceres/pkg/config"
	"mercator-hq/ceres/pkg/decision"
	"mercator-hq/ceres/pkg/evidence"
	"mercator-hq/ceres/pkg/governance"
	"mercator-hq/ceres/pkg/policy"
	"mercator-hq/ceres/pkg/review"
	"mercator-hq/ceres/pkg/storage"
	"mercator-hq/ceres/pkg/telemetry/logging"
	"mercator-hq/ceres/pkg/telemetry/metrics"
)

// app holds the wired component graph shared by all subcommands.
type app struct {
	config     *config.Config
	store      storage.Store
	engine     *policy.Engine
	checker    *evidence.Checker
	classifier *classifier.Classifier
	resolver   *decision.Resolver
	review     *review.Service
	governance *governance.Service
	registry   *prometheus.Registry
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// newApp loads configuration and wires every component. The caller owns
// the returned app and must call Close.
func newApp() (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	logger, err := logging.Setup(&cfg.Telemetry.Logging)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStore(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	pol := loadPolicy(store, cfg.Policy.Path)
	engine := policy.NewEngine(pol)

	clf := classifier.New(&cfg.Classifier.Thresholds)
	if cfg.Classifier.Enabled {
		if cfg.Classifier.ModelPath != "" {
			if err := clf.LoadFile(cfg.Classifier.ModelPath); err != nil {
				logger.Warn("trained model not loadable, training from policy",
					"path", cfg.Classifier.ModelPath, "error", err)
				clf.Train(pol)
			}
		} else {
			clf.Train(pol)
		}
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	checker := evidence.NewChecker(cfg.Evidence.BaseDir)
	resolver := decision.NewResolver(store, engine, checker, clf, collector)

	return &app{
		config:     cfg,
		store:      store,
		engine:     engine,
		checker:    checker,
		classifier: clf,
		resolver:   resolver,
		review:     review.NewService(store, collector),
		governance: governance.NewService(store, &cfg.Governance),
		registry:   registry,
		metrics:    collector,
		logger:     logger,
	}, nil
}

// loadPolicy reads the policy file. A missing or malformed policy degrades
// to an empty rule set so every claim falls through to the classifier; the
// degradation is recorded in the audit log. Use `ceres policy validate` to
// surface load errors directly.
func loadPolicy(store storage.Store, path string) *policy.Policy {
	pol, err := policy.LoadFile(path)
	if err == nil {
		return pol
	}

	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("policy file not found, starting with empty rule set", "path", path)
	} else {
		slog.Error("policy file malformed, starting with empty rule set", "path", path, "error", err)
	}
	entry := &claims.AuditEntry{
		Actor:   "policy",
		Action:  "RULES_LOAD_ERROR",
		Details: map[string]any{"path": path, "error": err.Error()},
	}
	if aerr := store.AppendAudit(context.Background(), entry); aerr != nil {
		slog.Error("audit append failed", "action", entry.Action, "error", aerr)
	}
	return policy.Empty()
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
}

// formatter returns the output formatter selected by the --output flag.
func formatter() cli.Formatter {
	return cli.NewFormatter(cli.OutputFormat(outputFormat))
}
