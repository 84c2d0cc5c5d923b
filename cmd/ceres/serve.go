package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"mercator-hq/ceres/pkg/cli"
	"mercator-hq/ceres/pkg/decision"
	"mercator-hq/ceres/pkg/policy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, policy watcher, and metrics endpoint",
	Long: `Run Ceres as a long-lived process: the re-verification scheduler
sweeps all products on the configured cron schedule, the policy file is
hot-reloaded on change, and Prometheus metrics are exposed when enabled.

The process runs until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cli.SetupSignalHandler()

		if a.config.Scheduler.ReverifySchedule == "" && !a.config.Policy.Watch && !a.config.Telemetry.Metrics.Enabled {
			return fmt.Errorf("nothing to serve: configure scheduler.reverify_schedule, policy.watch, or telemetry.metrics.enabled")
		}

		scheduler := decision.NewScheduler(a.resolver, a.config.Scheduler.ReverifySchedule)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()

		if a.config.Policy.Watch {
			watcher := policy.NewWatcher(a.config.Policy.Path, a.engine,
				time.Duration(a.config.Policy.DebounceMillis)*time.Millisecond)
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					a.logger.Error("policy watcher stopped", "error", err)
				}
			}()
		}

		var metricsServer *http.Server
		if a.config.Telemetry.Metrics.Enabled {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
			metricsServer = &http.Server{
				Addr:    a.config.Telemetry.Metrics.ListenAddress,
				Handler: mux,
			}
			go func() {
				a.logger.Info("metrics listener started", "address", metricsServer.Addr)
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("metrics listener failed", "error", err)
				}
			}()
		}

		a.logger.Info("ceres serving",
			"schedule", a.config.Scheduler.ReverifySchedule,
			"policy_watch", a.config.Policy.Watch,
			"metrics", a.config.Telemetry.Metrics.Enabled,
		)

		<-ctx.Done()

		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("metrics listener shutdown failed", "error", err)
			}
		}
		a.logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
