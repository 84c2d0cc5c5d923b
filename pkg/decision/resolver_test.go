package decision

import (
	"context"
	"strings"
	"testing"
	"time"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/classifier"
	"mercator-hq/ceres/pkg/evidence"
	"mercator-hq/ceres/pkg/policy"
	"mercator-hq/ceres/pkg/storage"
)

const resolverPolicy = `
rules:
  - claim: "Gluten-Free"
    match: exact
    directive: PASS
  - claim: "Soil Association Organic"
    match: exact
    directive: PASS_IF_CERT
    required_evidence:
      - "Soil Association Certification"
  - claim: "cures"
    match: contains
    directive: FAIL
    remediation: "Remove medical language"
  - claim: "Low Sugar"
    match: exact
    directive: WARNING
  - claim: "Carbon Neutral"
    match: exact
    directive: REVIEW_IF_NO_THIRD_PARTY
`

type fixture struct {
	store    *storage.MemoryStore
	resolver *Resolver
}

// newFixture wires a resolver over the in-memory store. train controls
// whether the classifier has a model; untrained means degraded mode.
func newFixture(t *testing.T, train bool) *fixture {
	t.Helper()
	p, err := policy.Load([]byte(resolverPolicy))
	if err != nil {
		t.Fatal(err)
	}
	engine := policy.NewEngine(p)
	clf := classifier.New(nil)
	if train {
		clf.Train(p)
	}
	store := storage.NewMemoryStore()
	return &fixture{
		store:    store,
		resolver: NewResolver(store, engine, evidence.NewChecker(""), clf, nil),
	}
}

func (f *fixture) addProduct(t *testing.T, evidenceRefs ...string) *claims.Product {
	t.Helper()
	now := time.Now()
	p := &claims.Product{
		ID:           claims.NewID(),
		Code:         "SKU-" + claims.NewID()[:8],
		Name:         "Test Product",
		EvidenceRefs: evidenceRefs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.store.InsertProduct(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func (f *fixture) addClaim(t *testing.T, productID, text string) *claims.Claim {
	t.Helper()
	c := &claims.Claim{
		ID:         claims.NewID(),
		ProductID:  productID,
		Text:       text,
		Provenance: claims.ProvenanceSupplier,
		Confidence: 1.0,
		CreatedAt:  time.Now(),
	}
	if err := f.store.InsertClaim(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestResolveExactPass(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t)
	c := f.addClaim(t, p.ID, "Gluten-Free")

	summary, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if summary.Directive != claims.DirectivePass {
		t.Errorf("directive = %q, want PASS", summary.Directive)
	}
	if summary.Method != claims.MethodRule {
		t.Errorf("method = %q, want rule", summary.Method)
	}
	if summary.RuleName != "Gluten-Free" {
		t.Errorf("rule name = %q", summary.RuleName)
	}
	if summary.TaskID != "" {
		t.Error("PASS must not create a review task")
	}

	// The persisted verdict is the authoritative one for the claim.
	verdict, err := f.store.LatestVerdictByClaim(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if verdict.ID != summary.VerdictID {
		t.Errorf("latest verdict = %s, want %s", verdict.ID, summary.VerdictID)
	}
}

func TestResolveConditionalCertMissing(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	// Only a supplier declaration: no Soil Association certificate.
	p := f.addProduct(t, "supplier_declaration.pdf")
	c := f.addClaim(t, p.ID, "Soil Association Organic")

	summary, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Directive != claims.DirectiveReview {
		t.Errorf("directive = %q, want REVIEW when certificate missing", summary.Directive)
	}
	if summary.Evidence != claims.EvidenceMissing {
		t.Errorf("evidence = %q, want MISSING", summary.Evidence)
	}
	if !strings.Contains(summary.Reasoning, "Missing required certificates") {
		t.Errorf("reasoning = %q", summary.Reasoning)
	}

	// Missing evidence routes to a request_evidence task.
	if summary.TaskID == "" {
		t.Fatal("expected a task")
	}
	task, err := f.store.GetTask(ctx, summary.TaskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Kind != claims.TaskRequestEvidence {
		t.Errorf("task kind = %q, want request_evidence", task.Kind)
	}
}

func TestResolveConditionalCertFound(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t, "soil_association_cert_2025.pdf")
	c := f.addClaim(t, p.ID, "Soil Association Organic")

	summary, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Directive != claims.DirectivePass {
		t.Errorf("directive = %q, want PASS with certificate present", summary.Directive)
	}
	if summary.Evidence != claims.EvidenceFound {
		t.Errorf("evidence = %q, want FOUND", summary.Evidence)
	}
	if !strings.Contains(summary.Reasoning, "Required certificates found") {
		t.Errorf("reasoning = %q", summary.Reasoning)
	}
}

func TestResolveThirdPartyConditional(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// Supplier-only evidence: review.
	p1 := f.addProduct(t, "supplier_declaration.pdf")
	c1 := f.addClaim(t, p1.ID, "Carbon Neutral")
	s1, err := f.resolver.Resolve(ctx, c1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s1.Directive != claims.DirectiveReview {
		t.Errorf("supplier-only directive = %q, want REVIEW", s1.Directive)
	}

	// Independent audit on file: pass.
	p2 := f.addProduct(t, "carbon_neutral_audit.pdf")
	c2 := f.addClaim(t, p2.ID, "Carbon Neutral")
	s2, err := f.resolver.Resolve(ctx, c2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Directive != claims.DirectivePass {
		t.Errorf("third-party directive = %q, want PASS", s2.Directive)
	}
}

func TestResolveFailCreatesRejectTask(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t)
	c := f.addClaim(t, p.ID, "This product cures headaches")

	summary, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Directive != claims.DirectiveFail {
		t.Fatalf("directive = %q, want FAIL", summary.Directive)
	}
	if !strings.Contains(summary.Reasoning, "Remediation: Remove medical language") {
		t.Errorf("reasoning = %q, want remediation text", summary.Reasoning)
	}

	task, err := f.store.GetTask(ctx, summary.TaskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Kind != claims.TaskReject {
		t.Errorf("task kind = %q, want reject", task.Kind)
	}
}

func TestResolveWarningCreatesModifyTask(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t)
	c := f.addClaim(t, p.ID, "Low Sugar")

	summary, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Directive != claims.DirectiveWarning {
		t.Fatalf("directive = %q, want WARNING", summary.Directive)
	}
	task, err := f.store.GetTask(ctx, summary.TaskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Kind != claims.TaskModify {
		t.Errorf("task kind = %q, want modify", task.Kind)
	}
}

func TestResolveDegradedClassifier(t *testing.T) {
	f := newFixture(t, false) // untrained: degraded mode
	ctx := context.Background()
	p := f.addProduct(t)
	c := f.addClaim(t, p.ID, "Completely novel marketing claim")

	summary, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Method != claims.MethodML {
		t.Errorf("method = %q, want ml", summary.Method)
	}
	if summary.Directive != claims.DirectiveReview {
		t.Errorf("directive = %q, want REVIEW", summary.Directive)
	}
	if summary.MLConfidence == nil || *summary.MLConfidence != 0.5 {
		t.Errorf("ml confidence = %v, want 0.5", summary.MLConfidence)
	}
	if summary.Reasoning != "Classifier not available. Manual review required." {
		t.Errorf("reasoning = %q", summary.Reasoning)
	}

	task, err := f.store.GetTask(ctx, summary.TaskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Kind != claims.TaskReview {
		t.Errorf("task kind = %q, want review", task.Kind)
	}
}

func TestResolveClassifierFallback(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t)
	c := f.addClaim(t, p.ID, "Unmatched text about flavor")

	summary, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Method != claims.MethodML {
		t.Errorf("method = %q, want ml", summary.Method)
	}
	if summary.MLConfidence == nil {
		t.Error("ml verdict must carry a confidence")
	}
	if summary.RuleName != "" {
		t.Errorf("ml verdict must not carry a rule name, got %q", summary.RuleName)
	}
	if !strings.HasPrefix(summary.Reasoning, "ML classification:") {
		t.Errorf("reasoning = %q", summary.Reasoning)
	}
}

func TestReverifySupersedesOldVerdict(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t)
	c := f.addClaim(t, p.ID, "Gluten-Free")

	first, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.resolver.Resolve(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}

	old, err := f.store.GetVerdict(ctx, first.VerdictID)
	if err != nil {
		t.Fatal(err)
	}
	if old.SupersededBy != second.VerdictID {
		t.Errorf("old verdict SupersededBy = %q, want %q", old.SupersededBy, second.VerdictID)
	}
	latest, err := f.store.LatestVerdictByClaim(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.VerdictID {
		t.Errorf("latest = %s, want %s", latest.ID, second.VerdictID)
	}
}

func TestVerifyProductCounts(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t)
	f.addClaim(t, p.ID, "Gluten-Free")
	f.addClaim(t, p.ID, "cures everything")

	report, err := f.resolver.VerifyProduct(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if report.ClaimsVerified != 2 {
		t.Errorf("claims verified = %d, want 2", report.ClaimsVerified)
	}
	if report.RuleBased != 2 {
		t.Errorf("rule based = %d, want 2", report.RuleBased)
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors = %v, want none", report.Errors)
	}
}

func TestVerifyAll(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	p1 := f.addProduct(t)
	f.addClaim(t, p1.ID, "Gluten-Free")
	p2 := f.addProduct(t)
	f.addClaim(t, p2.ID, "Low Sugar")
	f.addProduct(t) // no claims, must be skipped

	report := f.resolver.VerifyAll(ctx, nil)
	if report.ProcessedProducts != 2 {
		t.Errorf("processed products = %d, want 2", report.ProcessedProducts)
	}
	if report.TotalClaims != 2 {
		t.Errorf("total claims = %d, want 2", report.TotalClaims)
	}

	// Unknown product IDs fail individually, not the batch.
	report = f.resolver.VerifyAll(ctx, []string{p1.ID, "missing-product"})
	if report.ProcessedProducts != 1 {
		t.Errorf("processed products = %d, want 1", report.ProcessedProducts)
	}
	if len(report.Errors) != 1 {
		t.Errorf("errors = %v, want exactly one", report.Errors)
	}
}

func TestResolveRecordsEvidenceValidations(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p := f.addProduct(t, "soil_association_cert.pdf", "supplier_declaration.pdf")
	c := f.addClaim(t, p.ID, "Soil Association Organic")

	if _, err := f.resolver.Resolve(ctx, c.ID); err != nil {
		t.Fatal(err)
	}

	validations, err := f.store.ListEvidenceValidations(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(validations) != 2 {
		t.Fatalf("validations = %d, want one per document", len(validations))
	}
}

func TestRuleOrderDeterminism(t *testing.T) {
	p, err := policy.Load([]byte(`
rules:
  - claim: "organic"
    match: contains
    directive: WARNING
  - claim: "100% Organic"
    match: exact
    directive: PASS
`))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewMemoryStore()
	clf := classifier.New(nil)
	clf.Train(p)
	resolver := NewResolver(store, policy.NewEngine(p), evidence.NewChecker(""), clf, nil)

	ctx := context.Background()
	now := time.Now()
	product := &claims.Product{ID: claims.NewID(), Code: "SKU-1", Name: "P", CreatedAt: now, UpdatedAt: now}
	if err := store.InsertProduct(ctx, product); err != nil {
		t.Fatal(err)
	}
	c := &claims.Claim{ID: claims.NewID(), ProductID: product.ID, Text: "100% Organic",
		Provenance: claims.ProvenanceSupplier, Confidence: 1, CreatedAt: now}
	if err := store.InsertClaim(ctx, c); err != nil {
		t.Fatal(err)
	}

	// Re-verifying repeatedly must always hit the same (first) rule.
	for i := 0; i < 3; i++ {
		summary, err := resolver.Resolve(ctx, c.ID)
		if err != nil {
			t.Fatal(err)
		}
		if summary.RuleName != "organic" || summary.Directive != claims.DirectiveWarning {
			t.Fatalf("iteration %d: rule %q directive %q, want first rule to win every time",
				i, summary.RuleName, summary.Directive)
		}
	}
}
