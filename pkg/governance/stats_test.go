package governance

import (
	"context"
	"testing"
	"time"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/storage"
)

type fixture struct {
	store   *storage.MemoryStore
	service *Service
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	return &fixture{store: store, service: NewService(store, cfg)}
}

func (f *fixture) addProduct(t *testing.T, code string) *claims.Product {
	t.Helper()
	now := time.Now()
	p := &claims.Product{ID: claims.NewID(), Code: code, Name: "Product " + code, CreatedAt: now, UpdatedAt: now}
	if err := f.store.InsertProduct(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func (f *fixture) addVerifiedClaim(t *testing.T, productID string, d claims.Directive) *claims.Claim {
	t.Helper()
	ctx := context.Background()
	c := &claims.Claim{
		ID: claims.NewID(), ProductID: productID, Text: "claim",
		Provenance: claims.ProvenanceSupplier, Confidence: 1, CreatedAt: time.Now(),
	}
	if err := f.store.InsertClaim(ctx, c); err != nil {
		t.Fatal(err)
	}
	v := &claims.Verdict{
		ID: claims.NewID(), ProductID: productID, ClaimID: c.ID,
		Directive: d, Method: claims.MethodRule, Evidence: claims.EvidenceNotRequired,
		CreatedAt: time.Now(),
	}
	if err := f.store.InsertVerdict(ctx, v, nil); err != nil {
		t.Fatal(err)
	}
	return c
}

func (f *fixture) addUnverifiedClaim(t *testing.T, productID string) {
	t.Helper()
	c := &claims.Claim{
		ID: claims.NewID(), ProductID: productID, Text: "pending",
		Provenance: claims.ProvenanceSupplier, Confidence: 1, CreatedAt: time.Now(),
	}
	if err := f.store.InsertClaim(context.Background(), c); err != nil {
		t.Fatal(err)
	}
}

func TestProductStatusBranches(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	approved := f.addProduct(t, "APPROVED")
	f.addVerifiedClaim(t, approved.ID, claims.DirectivePass)
	f.addVerifiedClaim(t, approved.ID, claims.DirectivePass)

	rejected := f.addProduct(t, "REJECTED")
	f.addVerifiedClaim(t, rejected.ID, claims.DirectivePass)
	f.addVerifiedClaim(t, rejected.ID, claims.DirectiveFail)
	f.addVerifiedClaim(t, rejected.ID, claims.DirectiveReview)

	pending := f.addProduct(t, "PENDING")
	f.addVerifiedClaim(t, pending.ID, claims.DirectivePass)
	f.addVerifiedClaim(t, pending.ID, claims.DirectiveReview)

	processing := f.addProduct(t, "PROCESSING")
	f.addVerifiedClaim(t, processing.ID, claims.DirectivePass)
	f.addUnverifiedClaim(t, processing.ID)

	noClaims := f.addProduct(t, "EMPTY")

	tests := []struct {
		productID string
		want      ComplianceStatus
	}{
		{approved.ID, StatusApproved},
		{rejected.ID, StatusRejected}, // FAIL dominates REVIEW
		{pending.ID, StatusPendingReview},
		{processing.ID, StatusProcessing},
		{noClaims.ID, StatusProcessing},
	}
	for _, tt := range tests {
		ps, err := f.service.ProductStatus(ctx, tt.productID)
		if err != nil {
			t.Fatalf("ProductStatus(%s) failed: %v", tt.productID, err)
		}
		if ps.Status != tt.want {
			t.Errorf("product %s status = %q, want %q", ps.ProductCode, ps.Status, tt.want)
		}
	}

	ps, err := f.service.ProductStatus(ctx, rejected.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ps.PassedClaims != 1 || ps.FailedClaims != 1 || ps.PendingClaims != 1 {
		t.Errorf("rejected product counts = %+v", ps)
	}

	if _, err := f.service.ProductStatus(ctx, "missing"); !claims.IsNotFound(err) {
		t.Errorf("got %v, want NotFoundError", err)
	}
}

func TestSupersededExcludedByDefault(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p := f.addProduct(t, "SKU-1")
	c := f.addVerifiedClaim(t, p.ID, claims.DirectiveReview)

	// A human modification supersedes the old claim's verdict and adds a
	// replacement claim with its own PASS verdict.
	latest, err := f.store.LatestVerdictByClaim(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.store.SetVerdictOutcome(ctx, latest.ID, claims.DirectiveSuperseded, "modified"); err != nil {
		t.Fatal(err)
	}
	f.addVerifiedClaim(t, p.ID, claims.DirectivePass)

	ps, err := f.service.ProductStatus(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ps.Status != StatusApproved {
		t.Errorf("status = %q, want approved once the superseded branch is ignored", ps.Status)
	}
	if ps.PendingClaims != 0 {
		t.Errorf("pending = %d, want 0", ps.PendingClaims)
	}
}

func TestOverview(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p := f.addProduct(t, "SKU-1")
	f.addVerifiedClaim(t, p.ID, claims.DirectivePass)
	c := f.addVerifiedClaim(t, p.ID, claims.DirectiveReview)

	verdict, err := f.store.LatestVerdictByClaim(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	task := &claims.ReviewTask{
		ID: claims.NewID(), ProductID: p.ID, VerdictID: verdict.ID,
		Kind: claims.TaskReview, Status: claims.TaskOpen, CreatedAt: time.Now(),
	}
	if err := f.store.InsertTask(ctx, task); err != nil {
		t.Fatal(err)
	}
	done := &claims.ReviewTask{
		ID: claims.NewID(), ProductID: p.ID, VerdictID: verdict.ID,
		Kind: claims.TaskReview, Status: claims.TaskOpen, CreatedAt: time.Now(),
	}
	if err := f.store.InsertTask(ctx, done); err != nil {
		t.Fatal(err)
	}
	if err := f.store.CompleteTask(ctx, done.ID, "Action: approve"); err != nil {
		t.Fatal(err)
	}

	overview, err := f.service.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	if overview.Products != 1 || overview.Claims != 2 || overview.Verdicts != 2 {
		t.Errorf("totals = %+v", overview)
	}
	if overview.VerdictsByOutcome[claims.DirectivePass] != 1 {
		t.Errorf("outcome counts = %v", overview.VerdictsByOutcome)
	}
	if overview.TasksByStatus[claims.TaskOpen] != 1 || overview.TasksByStatus[claims.TaskCompleted] != 1 {
		t.Errorf("task status counts = %v", overview.TasksByStatus)
	}
	if overview.TaskCompletionRate != 0.5 {
		t.Errorf("completion rate = %v, want 0.5", overview.TaskCompletionRate)
	}
	if overview.ProductsByStatus[StatusPendingReview] != 1 {
		t.Errorf("products by status = %v", overview.ProductsByStatus)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	p := f.addProduct(t, "SKU-1")
	f.addVerifiedClaim(t, p.ID, claims.DirectivePass)

	if err := f.service.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	totals, err := f.store.Totals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if totals.Products != 0 || totals.Claims != 0 || totals.Verdicts != 0 {
		t.Errorf("totals after reset = %+v", totals)
	}

	// The reset itself is the only audit record left.
	entries, err := f.store.RecentAudit(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Action != "SYSTEM_RESET" {
		t.Errorf("audit after reset = %+v, want single SYSTEM_RESET", entries)
	}
}
