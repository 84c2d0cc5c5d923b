package decision

import (
	"context"
	"testing"

	"mercator-hq/ceres/pkg/classifier"
	"mercator-hq/ceres/pkg/evidence"
	"mercator-hq/ceres/pkg/policy"
	"mercator-hq/ceres/pkg/storage"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewResolver(store, policy.NewEngine(nil), evidence.NewChecker(""), classifier.New(nil), nil)
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	s := NewScheduler(testResolver(t), "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start with empty schedule failed: %v", err)
	}
	s.Stop() // must be safe even though nothing started
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	s := NewScheduler(testResolver(t), "every day at noon")
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(testResolver(t), "0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
	s.Stop() // idempotent
}
