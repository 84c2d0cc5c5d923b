package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ceres/pkg/claims"
)

// Collector registers and records the verification pipeline's Prometheus
// metrics.
//
// Metrics:
//   - ceres_verdicts_total{directive,method}: verdicts by outcome and method
//   - ceres_review_tasks_created_total{kind}: review tasks created
//   - ceres_task_transitions_total{action}: human override actions applied
//   - ceres_classifier_fallbacks_total{outcome}: fallback classifications
//   - ceres_evidence_checks_total{status}: certificate evidence checks
//   - ceres_claim_verification_seconds: per-claim verification latency
type Collector struct {
	verdicts            *prometheus.CounterVec
	tasksCreated        *prometheus.CounterVec
	taskTransitions     *prometheus.CounterVec
	classifierFallbacks *prometheus.CounterVec
	evidenceChecks      *prometheus.CounterVec
	verifyDuration      prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics on the given
// registerer. Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ceres_verdicts_total",
			Help: "Total verdicts produced, by directive and deciding method.",
		}, []string{"directive", "method"}),

		tasksCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ceres_review_tasks_created_total",
			Help: "Total review tasks created, by task kind.",
		}, []string{"kind"}),

		taskTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ceres_task_transitions_total",
			Help: "Total human override actions applied to review tasks.",
		}, []string{"action"}),

		classifierFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ceres_classifier_fallbacks_total",
			Help: "Total fallback classifications, by availability outcome.",
		}, []string{"outcome"}),

		evidenceChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ceres_evidence_checks_total",
			Help: "Total certificate evidence checks, by status.",
		}, []string{"status"}),

		verifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ceres_claim_verification_seconds",
			Help:    "Per-claim verification latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.verdicts,
		c.tasksCreated,
		c.taskTransitions,
		c.classifierFallbacks,
		c.evidenceChecks,
		c.verifyDuration,
	)

	return c
}

// RecordVerdict records one produced verdict.
func (c *Collector) RecordVerdict(directive claims.Directive, method claims.Method) {
	c.verdicts.WithLabelValues(string(directive), string(method)).Inc()
}

// RecordTaskCreated records one created review task.
func (c *Collector) RecordTaskCreated(kind claims.TaskKind) {
	c.tasksCreated.WithLabelValues(string(kind)).Inc()
}

// RecordTaskTransition records one human override action.
func (c *Collector) RecordTaskTransition(action string) {
	c.taskTransitions.WithLabelValues(action).Inc()
}

// RecordClassifierFallback records one fallback classification.
func (c *Collector) RecordClassifierFallback(available bool) {
	outcome := "available"
	if !available {
		outcome = "unavailable"
	}
	c.classifierFallbacks.WithLabelValues(outcome).Inc()
}

// RecordEvidenceCheck records one certificate evidence check.
func (c *Collector) RecordEvidenceCheck(status claims.EvidenceStatus) {
	c.evidenceChecks.WithLabelValues(string(status)).Inc()
}

// RecordVerification records one claim's verification latency.
func (c *Collector) RecordVerification(d time.Duration) {
	c.verifyDuration.Observe(d.Seconds())
}
