package decision

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic re-verification sweeps over all products with
// claims, using cron syntax.
type Scheduler struct {
	resolver *Resolver
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler. schedule uses standard cron syntax
// (e.g. "0 3 * * *" for daily at 3 AM); an empty schedule disables it.
func NewScheduler(resolver *Resolver, schedule string) *Scheduler {
	return &Scheduler{
		resolver: resolver,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "decision.scheduler"),
	}
}

// Start begins scheduled sweeps. It returns immediately; sweeps run in the
// cron goroutine until the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("re-verification schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule re-verification: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("re-verification scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep executes one re-verification sweep.
func (s *Scheduler) runSweep(ctx context.Context) {
	s.logger.Info("starting scheduled re-verification sweep")

	report := s.resolver.VerifyAll(ctx, nil)

	s.logger.Info("scheduled re-verification completed",
		"processed_products", report.ProcessedProducts,
		"total_claims", report.TotalClaims,
		"errors", len(report.Errors),
	)
}

// Stop halts the scheduler. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("re-verification scheduler stopped")
}
