package governance

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/storage"
)

// ComplianceStatus is the rolled-up verification state of one product.
type ComplianceStatus string

const (
	// StatusApproved means every claim on the product has a PASS verdict.
	StatusApproved ComplianceStatus = "approved"
	// StatusRejected means at least one claim has a FAIL verdict.
	StatusRejected ComplianceStatus = "rejected"
	// StatusPendingReview means at least one claim awaits human review.
	StatusPendingReview ComplianceStatus = "pending_review"
	// StatusProcessing means at least one claim has no verdict yet.
	StatusProcessing ComplianceStatus = "processing"
)

// Config controls statistics computation.
type Config struct {
	// CountSuperseded includes SUPERSEDED verdicts in directive counts
	// and product rollups. Default: false, so only live decisions count.
	CountSuperseded bool `yaml:"count_superseded"`
}

// DefaultConfig returns the default governance configuration.
func DefaultConfig() *Config {
	return &Config{CountSuperseded: false}
}

// Overview is the system-wide compliance statistics snapshot.
type Overview struct {
	GeneratedAt        time.Time                  `json:"generated_at"`
	Products           int                        `json:"products"`
	Claims             int                        `json:"claims"`
	Verdicts           int                        `json:"verdicts"`
	VerdictsByOutcome  map[claims.Directive]int   `json:"verdicts_by_outcome"`
	VerdictsByMethod   map[claims.Method]int      `json:"verdicts_by_method"`
	TasksByStatus      map[claims.TaskStatus]int  `json:"tasks_by_status"`
	TasksByKind        map[claims.TaskKind]int    `json:"tasks_by_kind"`
	TaskCompletionRate float64                    `json:"task_completion_rate"`
	ProductsByStatus   map[ComplianceStatus]int   `json:"products_by_status"`
}

// ProductStatus is the compliance rollup for a single product.
type ProductStatus struct {
	ProductID     string           `json:"product_id"`
	ProductCode   string           `json:"product_code"`
	ProductName   string           `json:"product_name"`
	Status        ComplianceStatus `json:"status"`
	TotalClaims   int              `json:"total_claims"`
	PassedClaims  int              `json:"passed_claims"`
	FailedClaims  int              `json:"failed_claims"`
	PendingClaims int              `json:"pending_claims"`
}

// Service computes governance statistics over the store.
type Service struct {
	store  storage.Store
	config *Config
	logger *slog.Logger
}

// NewService creates the governance service. config may be nil for defaults.
func NewService(store storage.Store, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "governance"),
	}
}

// Overview computes the system-wide statistics snapshot.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return nil, err
	}

	byOutcome, err := s.store.VerdictCounts(ctx, s.config.CountSuperseded)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.store.VerdictMethodCounts(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.store.TaskStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	byKind, err := s.store.TaskKindCounts(ctx)
	if err != nil {
		return nil, err
	}

	totalTasks := 0
	for _, n := range byStatus {
		totalTasks += n
	}
	rate := 0.0
	if totalTasks > 0 {
		rate = float64(byStatus[claims.TaskCompleted]) / float64(totalTasks)
	}

	productStatuses, err := s.AllProductStatuses(ctx)
	if err != nil {
		return nil, err
	}
	byCompliance := make(map[ComplianceStatus]int, 4)
	for _, ps := range productStatuses {
		byCompliance[ps.Status]++
	}

	return &Overview{
		GeneratedAt:        time.Now(),
		Products:           totals.Products,
		Claims:             totals.Claims,
		Verdicts:           totals.Verdicts,
		VerdictsByOutcome:  byOutcome,
		VerdictsByMethod:   byMethod,
		TasksByStatus:      byStatus,
		TasksByKind:        byKind,
		TaskCompletionRate: rate,
		ProductsByStatus:   byCompliance,
	}, nil
}

// ProductStatus rolls up the latest verdict of every claim on one product.
//
// Rejection dominates: a single FAIL marks the product rejected regardless
// of other claims. A claim without a verdict marks the product processing;
// any non-terminal directive marks it pending_review. Only when every claim
// has a live PASS verdict is the product approved.
func (s *Service) ProductStatus(ctx context.Context, productID string) (*ProductStatus, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	claimList, err := s.store.ListClaimsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	ps := &ProductStatus{
		ProductID:   product.ID,
		ProductCode: product.Code,
		ProductName: product.Name,
		TotalClaims: len(claimList),
	}

	if len(claimList) == 0 {
		ps.Status = StatusProcessing
		return ps, nil
	}

	hasUnverified := false
	hasPending := false
	for _, c := range claimList {
		verdict, err := s.store.LatestVerdictByClaim(ctx, c.ID)
		if err != nil {
			if claims.IsNotFound(err) {
				hasUnverified = true
				continue
			}
			return nil, err
		}
		if !s.config.CountSuperseded && verdict.Directive == claims.DirectiveSuperseded {
			// The claim was replaced by a human-modified one which is
			// also in claimList, so the retired branch does not count.
			continue
		}
		switch verdict.Directive {
		case claims.DirectivePass:
			ps.PassedClaims++
		case claims.DirectiveFail:
			ps.FailedClaims++
		default:
			ps.PendingClaims++
			hasPending = true
		}
	}

	switch {
	case ps.FailedClaims > 0:
		ps.Status = StatusRejected
	case hasUnverified:
		ps.Status = StatusProcessing
	case hasPending:
		ps.Status = StatusPendingReview
	default:
		ps.Status = StatusApproved
	}
	return ps, nil
}

// AllProductStatuses computes the rollup for every stored product.
func (s *Service) AllProductStatuses(ctx context.Context) ([]*ProductStatus, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]*ProductStatus, 0, len(products))
	for _, p := range products {
		ps, err := s.ProductStatus(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, ps)
	}
	return statuses, nil
}

// RecentAudit returns the newest audit entries, most recent first.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]*claims.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.store.RecentAudit(ctx, limit)
}

// Reset wipes all verification state including the audit log, then writes
// a single SYSTEM_RESET entry so the wipe itself is on record.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	entry := &claims.AuditEntry{
		Actor:     "governance",
		Action:    "SYSTEM_RESET",
		Timestamp: time.Now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("audit append failed after reset", "error", err)
	}
	s.logger.Warn("verification state reset")
	return nil
}
