package decision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/classifier"
	"mercator-hq/ceres/pkg/evidence"
	"mercator-hq/ceres/pkg/policy"
	"mercator-hq/ceres/pkg/storage"
	"mercator-hq/ceres/pkg/telemetry/metrics"
)

const auditActor = "decision.resolver"

// VerdictSummary is the caller-facing result of resolving one claim.
type VerdictSummary struct {
	VerdictID    string                `json:"verdict_id"`
	ClaimID      string                `json:"claim_id"`
	ClaimText    string                `json:"claim_text"`
	Directive    claims.Directive      `json:"directive"`
	Method       claims.Method         `json:"method"`
	RuleName     string                `json:"rule_name,omitempty"`
	MLConfidence *float64              `json:"ml_confidence,omitempty"`
	Evidence     claims.EvidenceStatus `json:"evidence_status"`
	Reasoning    string                `json:"reasoning"`
	TaskID       string                `json:"task_id,omitempty"` // empty when no task was created
}

// ItemError reports one failed item in a batch without aborting the batch.
type ItemError struct {
	ID    string `json:"id"` // claim or product identifier
	Error string `json:"error"`
}

// ProductReport summarizes verification of one product's claims.
type ProductReport struct {
	ProductID      string            `json:"product_id"`
	ClaimsVerified int               `json:"claims_verified"`
	RuleBased      int               `json:"rule_based"`
	MLBased        int               `json:"ml_based"`
	CertChecks     int               `json:"cert_checks"`
	Verdicts       []*VerdictSummary `json:"verdicts"`
	Errors         []ItemError       `json:"errors,omitempty"`
}

// BatchReport summarizes a verify-all run. Errors never abort the batch;
// processed counts and the per-item error list are reported separately.
type BatchReport struct {
	ProcessedProducts int         `json:"processed_products"`
	TotalClaims       int         `json:"total_claims"`
	RuleBased         int         `json:"rule_based"`
	MLBased           int         `json:"ml_based"`
	CertChecks        int         `json:"cert_checks"`
	Errors            []ItemError `json:"errors,omitempty"`
}

// Resolver orchestrates the per-claim decision pipeline: rule engine, then
// certificate checker for conditional directives, then the fallback
// classifier when no rule matches. Each resolved claim produces exactly one
// immutable verdict and at most one review task.
//
// The resolver holds no mutable state of its own; the engine's policy and
// the classifier's model are read-only after load, so one Resolver may be
// shared across concurrent workers operating on distinct products.
type Resolver struct {
	store      storage.Store
	engine     *policy.Engine
	checker    *evidence.Checker
	classifier *classifier.Classifier
	metrics    *metrics.Collector // nil disables metrics
	logger     *slog.Logger
	progress   func(done, total int)
}

// SetProgress installs a callback invoked after each product during batch
// verification. Not safe to call concurrently with VerifyAll.
func (r *Resolver) SetProgress(fn func(done, total int)) {
	r.progress = fn
}

// NewResolver wires the pipeline. metrics may be nil.
func NewResolver(store storage.Store, engine *policy.Engine, checker *evidence.Checker, clf *classifier.Classifier, collector *metrics.Collector) *Resolver {
	return &Resolver{
		store:      store,
		engine:     engine,
		checker:    checker,
		classifier: clf,
		metrics:    collector,
		logger:     slog.Default().With("component", "decision.resolver"),
	}
}

// Resolve verifies a single claim by identifier and returns its verdict
// summary. Unknown claim identifiers return a NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, claimID string) (*VerdictSummary, error) {
	claim, err := r.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	product, err := r.store.GetProduct(ctx, claim.ProductID)
	if err != nil {
		return nil, err
	}
	return r.resolveClaim(ctx, product, claim)
}

// VerifyProduct verifies every claim of one product. A failure on one claim
// is recorded in the report's error list and does not stop the others.
func (r *Resolver) VerifyProduct(ctx context.Context, productID string) (*ProductReport, error) {
	product, err := r.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	claimList, err := r.store.ListClaimsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	report := &ProductReport{ProductID: productID}
	for _, claim := range claimList {
		summary, err := r.resolveClaim(ctx, product, claim)
		if err != nil {
			report.Errors = append(report.Errors, ItemError{ID: claim.ID, Error: err.Error()})
			r.auditError(ctx, claim.ID, err)
			continue
		}
		report.ClaimsVerified++
		report.Verdicts = append(report.Verdicts, summary)
		switch summary.Method {
		case claims.MethodRule:
			report.RuleBased++
		case claims.MethodML:
			report.MLBased++
		}
		if summary.Evidence != claims.EvidenceNotRequired {
			report.CertChecks++
		}
	}
	return report, nil
}

// VerifyAll verifies claims for the given products, or for every product
// that has claims when productIDs is nil. Per-product failures are collected
// in the batch report; the run never aborts as a whole.
func (r *Resolver) VerifyAll(ctx context.Context, productIDs []string) *BatchReport {
	report := &BatchReport{}

	if productIDs == nil {
		ids, err := r.store.ListProductIDsWithClaims(ctx)
		if err != nil {
			report.Errors = append(report.Errors, ItemError{ID: "*", Error: err.Error()})
			return report
		}
		productIDs = ids
	}

	r.audit(ctx, "VERIFICATION_STARTED", "", map[string]any{"product_count": len(productIDs)})

	for i, id := range productIDs {
		pr, err := r.VerifyProduct(ctx, id)
		if r.progress != nil {
			r.progress(i+1, len(productIDs))
		}
		if err != nil {
			report.Errors = append(report.Errors, ItemError{ID: id, Error: err.Error()})
			r.auditError(ctx, id, err)
			continue
		}
		report.ProcessedProducts++
		report.TotalClaims += pr.ClaimsVerified
		report.RuleBased += pr.RuleBased
		report.MLBased += pr.MLBased
		report.CertChecks += pr.CertChecks
		report.Errors = append(report.Errors, pr.Errors...)
	}

	r.audit(ctx, "VERIFICATION_COMPLETED", "", map[string]any{
		"processed_products": report.ProcessedProducts,
		"total_claims":       report.TotalClaims,
		"rule_based":         report.RuleBased,
		"ml_based":           report.MLBased,
		"errors":             len(report.Errors),
	})

	return report
}

// resolveClaim runs the decision pipeline for one claim:
// rule match -> (conditional) evidence check -> fallback classification,
// then persists the verdict and, unless the directive is PASS, one task.
func (r *Resolver) resolveClaim(ctx context.Context, product *claims.Product, claim *claims.Claim) (*VerdictSummary, error) {
	start := time.Now()

	verdict := &claims.Verdict{
		ID:        claims.NewID(),
		ProductID: product.ID,
		ClaimID:   claim.ID,
		CreatedAt: time.Now(),
	}

	match, matched := r.engine.Match(claim.Text)

	var required []claims.Category
	if matched {
		required = match.RequiredEvidence
	}
	check := r.checker.Check(product.EvidenceRefs, required)

	if matched {
		verdict.Method = claims.MethodRule
		verdict.RuleName = match.Rule.Name()
		verdict.Directive = match.Directive.Resolve(check.Status == claims.EvidenceFound, check.HasThirdParty)
		verdict.Reasoning = ruleReasoning(match, check)
	} else {
		result := r.classifier.Classify(claim.Text)
		conf := result.Confidence
		verdict.Method = claims.MethodML
		verdict.MLConfidence = &conf
		verdict.Directive = result.Directive
		verdict.Reasoning = mlReasoning(result)
		if r.metrics != nil {
			r.metrics.RecordClassifierFallback(result.Available)
		}
	}
	verdict.Evidence = check.Status

	var task *claims.ReviewTask
	switch verdict.Directive {
	case claims.DirectiveReview, claims.DirectiveFail, claims.DirectiveWarning:
		task = buildTask(verdict, check)
	}

	// Verdict first, its task in the same transaction.
	if err := r.store.InsertVerdict(ctx, verdict, task); err != nil {
		return nil, err
	}

	r.recordValidations(ctx, product.ID, check.Documents)

	r.audit(ctx, "DECISION_MADE", claim.ID, map[string]any{
		"verdict_id": verdict.ID,
		"directive":  verdict.Directive,
		"method":     verdict.Method,
		"rule":       verdict.RuleName,
		"evidence":   verdict.Evidence,
	})
	if task != nil {
		r.audit(ctx, "TASK_CREATED", task.ID, map[string]any{
			"verdict_id": verdict.ID,
			"kind":       task.Kind,
		})
	}

	if r.metrics != nil {
		r.metrics.RecordVerdict(verdict.Directive, verdict.Method)
		r.metrics.RecordEvidenceCheck(check.Status)
		if task != nil {
			r.metrics.RecordTaskCreated(task.Kind)
		}
		r.metrics.RecordVerification(time.Since(start))
	}

	summary := &VerdictSummary{
		VerdictID:    verdict.ID,
		ClaimID:      claim.ID,
		ClaimText:    claim.Text,
		Directive:    verdict.Directive,
		Method:       verdict.Method,
		RuleName:     verdict.RuleName,
		MLConfidence: verdict.MLConfidence,
		Evidence:     verdict.Evidence,
		Reasoning:    verdict.Reasoning,
	}
	if task != nil {
		summary.TaskID = task.ID
	}
	return summary, nil
}

// buildTask picks the task kind by priority: FAIL -> reject, WARNING ->
// modify, missing evidence -> request_evidence, otherwise a generic review.
func buildTask(verdict *claims.Verdict, check *evidence.CheckResult) *claims.ReviewTask {
	kind := claims.TaskReview
	desc := fmt.Sprintf("Claim verification result: %s. ", verdict.Directive)

	switch {
	case verdict.Directive == claims.DirectiveFail:
		kind = claims.TaskReject
		desc += "Claim failed verification and should be rejected."
	case verdict.Directive == claims.DirectiveWarning:
		kind = claims.TaskModify
		desc += "Claim requires modification or additional evidence."
	case check.Status == claims.EvidenceMissing:
		kind = claims.TaskRequestEvidence
		desc += "Required certificates are missing. Request evidence from supplier."
	default:
		desc += "Manual review required for final approval."
	}
	desc += " Reasoning: " + verdict.Reasoning

	return &claims.ReviewTask{
		ID:          claims.NewID(),
		ProductID:   verdict.ProductID,
		VerdictID:   verdict.ID,
		Kind:        kind,
		Status:      claims.TaskOpen,
		Description: desc,
		CreatedAt:   time.Now(),
	}
}

// ruleReasoning assembles the human-readable reasoning for a rule-based
// verdict.
func ruleReasoning(match *policy.MatchResult, check *evidence.CheckResult) string {
	name := match.Rule.Name()
	switch match.Directive {
	case policy.RulePassIfCert:
		if check.Status == claims.EvidenceFound {
			return fmt.Sprintf("Rule matched: %s. Required certificates found.", name)
		}
		return fmt.Sprintf("Rule matched: %s. Missing required certificates: %s",
			name, joinCategories(match.RequiredEvidence))
	case policy.RuleReviewIfCertMissing:
		if check.Status == claims.EvidenceFound {
			return fmt.Sprintf("Rule matched: %s. Required certificates found.", name)
		}
		return fmt.Sprintf("Rule matched: %s. Requires human review due to missing certificates.", name)
	case policy.RuleReviewIfNoThirdParty:
		if check.HasThirdParty {
			return fmt.Sprintf("Rule matched: %s. Third-party evidence found.", name)
		}
		return fmt.Sprintf("Rule matched: %s. Only supplier declaration available, requires review.", name)
	}

	reasoning := fmt.Sprintf("Rule matched: %s.", name)
	if match.Notes != "" {
		reasoning += " " + match.Notes
	}
	if match.Remediation != "" {
		reasoning += " Remediation: " + match.Remediation
	}
	return reasoning
}

// mlReasoning assembles the reasoning for a classifier-based verdict.
func mlReasoning(result classifier.Result) string {
	if !result.Available {
		return "Classifier not available. Manual review required."
	}

	reasoning := fmt.Sprintf("ML classification: %s (confidence: %.2f). ", result.Directive, result.Confidence)
	switch {
	case result.Confidence < 0.6:
		reasoning += "Low confidence score, manual review recommended."
	case result.Confidence > 0.8:
		reasoning += "High confidence classification."
	default:
		reasoning += "Moderate confidence classification."
	}
	return reasoning
}

func joinCategories(cats []claims.Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// recordValidations persists one validation record per inspected document.
// Validation write failures are logged but never fail the decision.
func (r *Resolver) recordValidations(ctx context.Context, productID string, docs []claims.EvidenceDocument) {
	for _, doc := range docs {
		rec := &claims.EvidenceValidation{
			ID:          claims.NewID(),
			ProductID:   productID,
			Reference:   doc.Reference,
			Category:    doc.Category,
			Status:      doc.Status,
			ValidatedAt: time.Now(),
		}
		if err := r.store.InsertEvidenceValidation(ctx, rec); err != nil {
			r.logger.Warn("evidence validation not recorded",
				"product_id", productID,
				"reference", doc.Reference,
				"error", err,
			)
		}
	}
}

func (r *Resolver) audit(ctx context.Context, action, subject string, details map[string]any) {
	entry := &claims.AuditEntry{
		Actor:     auditActor,
		Action:    action,
		SubjectID: subject,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := r.store.AppendAudit(ctx, entry); err != nil {
		r.logger.Error("audit append failed", "action", action, "error", err)
	}
}

func (r *Resolver) auditError(ctx context.Context, subject string, cause error) {
	r.audit(ctx, "CLAIM_VERIFICATION_ERROR", subject, map[string]any{"error": cause.Error()})
}
