package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/ceres/pkg/claims"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(prometheus.NewRegistry())
}

func TestRecordVerdict(t *testing.T) {
	c := newTestCollector(t)

	c.RecordVerdict(claims.DirectivePass, claims.MethodRule)
	c.RecordVerdict(claims.DirectivePass, claims.MethodRule)
	c.RecordVerdict(claims.DirectiveReview, claims.MethodML)

	if got := testutil.ToFloat64(c.verdicts.WithLabelValues("PASS", "rule")); got != 2 {
		t.Errorf("PASS/rule count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.verdicts.WithLabelValues("REVIEW", "ml")); got != 1 {
		t.Errorf("REVIEW/ml count = %v, want 1", got)
	}
}

func TestRecordTaskMetrics(t *testing.T) {
	c := newTestCollector(t)

	c.RecordTaskCreated(claims.TaskReview)
	c.RecordTaskTransition("approve")
	c.RecordTaskTransition("approve")
	c.RecordTaskTransition("modify")

	if got := testutil.ToFloat64(c.tasksCreated.WithLabelValues("review")); got != 1 {
		t.Errorf("tasks created = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.taskTransitions.WithLabelValues("approve")); got != 2 {
		t.Errorf("approve transitions = %v, want 2", got)
	}
}

func TestRecordClassifierFallback(t *testing.T) {
	c := newTestCollector(t)

	c.RecordClassifierFallback(true)
	c.RecordClassifierFallback(false)
	c.RecordClassifierFallback(false)

	if got := testutil.ToFloat64(c.classifierFallbacks.WithLabelValues("available")); got != 1 {
		t.Errorf("available = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.classifierFallbacks.WithLabelValues("unavailable")); got != 2 {
		t.Errorf("unavailable = %v, want 2", got)
	}
}

func TestRecordEvidenceAndDuration(t *testing.T) {
	c := newTestCollector(t)

	c.RecordEvidenceCheck(claims.EvidenceFound)
	c.RecordVerification(15 * time.Millisecond)

	if got := testutil.ToFloat64(c.evidenceChecks.WithLabelValues("FOUND")); got != 1 {
		t.Errorf("evidence checks = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.verifyDuration); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}
}
