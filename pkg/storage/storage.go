package storage

import (
	"context"

	"mercator-hq/ceres/pkg/claims"
)

// Store is the persistence contract required by the verification core.
//
// Implementations must make every insert/update individually atomic and must
// tolerate concurrent writers. InsertVerdict is required to retire the
// previous authoritative verdict for the same claim (setting its
// superseded_by column) in the same transaction that writes the new one, so
// the "latest verdict per claim" invariant never depends on row ordering.
type Store interface {
	// Products.
	InsertProduct(ctx context.Context, p *claims.Product) error
	GetProduct(ctx context.Context, id string) (*claims.Product, error)
	ListProducts(ctx context.Context) ([]*claims.Product, error)

	// Claims.
	InsertClaim(ctx context.Context, c *claims.Claim) error
	GetClaim(ctx context.Context, id string) (*claims.Claim, error)
	ListClaimsByProduct(ctx context.Context, productID string) ([]*claims.Claim, error)
	ListProductIDsWithClaims(ctx context.Context) ([]string, error)

	// Verdicts. InsertVerdict persists v and, atomically, its dependent
	// review task when task is non-nil. The verdict row is always written
	// before the task row.
	InsertVerdict(ctx context.Context, v *claims.Verdict, task *claims.ReviewTask) error
	GetVerdict(ctx context.Context, id string) (*claims.Verdict, error)
	LatestVerdictByClaim(ctx context.Context, claimID string) (*claims.Verdict, error)
	SetVerdictOutcome(ctx context.Context, id string, directive claims.Directive, reasoning string) error

	// Review tasks.
	InsertTask(ctx context.Context, t *claims.ReviewTask) error
	GetTask(ctx context.Context, id string) (*claims.ReviewTask, error)
	ListOpenTasks(ctx context.Context, kind claims.TaskKind, limit int) ([]*claims.ReviewTask, error)
	ListCompletedTasks(ctx context.Context, productID string, limit int) ([]*claims.ReviewTask, error)
	CompleteTask(ctx context.Context, id string, actionTaken string) error

	// Evidence validations.
	InsertEvidenceValidation(ctx context.Context, v *claims.EvidenceValidation) error
	ListEvidenceValidations(ctx context.Context, productID string) ([]*claims.EvidenceValidation, error)

	// Audit trail.
	AppendAudit(ctx context.Context, e *claims.AuditEntry) error
	RecentAudit(ctx context.Context, limit int) ([]*claims.AuditEntry, error)

	// Aggregates for governance rollups.
	VerdictCounts(ctx context.Context, includeSuperseded bool) (map[claims.Directive]int, error)
	VerdictMethodCounts(ctx context.Context) (map[claims.Method]int, error)
	TaskStatusCounts(ctx context.Context) (map[claims.TaskStatus]int, error)
	TaskKindCounts(ctx context.Context) (map[claims.TaskKind]int, error)
	Totals(ctx context.Context) (*Totals, error)

	// Reset atomically clears all tables in dependency order:
	// tasks -> verdicts -> claims -> evidence validations -> products -> audit.
	Reset(ctx context.Context) error

	Close() error
}

// Totals holds the high-level record counts used by the governance overview.
type Totals struct {
	Products       int `json:"products"`
	Claims         int `json:"claims"`
	Verdicts       int `json:"verdicts"`
	OpenTasks      int `json:"open_tasks"`
	CompletedTasks int `json:"completed_tasks"`
}
