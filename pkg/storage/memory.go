package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/ceres/pkg/claims"
)

// MemoryStore implements the Store interface using in-memory maps.
// This implementation is intended for testing only.
type MemoryStore struct {
	mu          sync.RWMutex
	products    map[string]*claims.Product
	claimRecs   map[string]*claims.Claim
	verdicts    map[string]*claims.Verdict
	tasks       map[string]*claims.ReviewTask
	validations []*claims.EvidenceValidation
	audit       []*claims.AuditEntry
	auditSeq    int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[string]*claims.Product),
		claimRecs: make(map[string]*claims.Claim),
		verdicts:  make(map[string]*claims.Verdict),
		tasks:     make(map[string]*claims.ReviewTask),
	}
}

// InsertProduct stores a product record.
func (s *MemoryStore) InsertProduct(ctx context.Context, p *claims.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// GetProduct retrieves a product by identifier.
func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*claims.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, claims.NewNotFoundError("product", id)
	}
	cp := *p
	return &cp, nil
}

// ListProducts returns all products ordered by code.
func (s *MemoryStore) ListProducts(ctx context.Context) ([]*claims.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*claims.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// InsertClaim stores a claim record.
func (s *MemoryStore) InsertClaim(ctx context.Context, c *claims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.claimRecs[c.ID] = &cp
	return nil
}

// GetClaim retrieves a claim by identifier.
func (s *MemoryStore) GetClaim(ctx context.Context, id string) (*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claimRecs[id]
	if !ok {
		return nil, claims.NewNotFoundError("claim", id)
	}
	cp := *c
	return &cp, nil
}

// ListClaimsByProduct returns a product's claims in insertion order.
func (s *MemoryStore) ListClaimsByProduct(ctx context.Context, productID string) ([]*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*claims.Claim
	for _, c := range s.claimRecs {
		if c.ProductID == productID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListProductIDsWithClaims returns distinct product identifiers with claims.
func (s *MemoryStore) ListProductIDsWithClaims(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	for _, c := range s.claimRecs {
		seen[c.ProductID] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// InsertVerdict stores a verdict (and optional dependent task), retiring the
// previous authoritative verdict for the claim.
func (s *MemoryStore) InsertVerdict(ctx context.Context, v *claims.Verdict, task *claims.ReviewTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, prev := range s.verdicts {
		if prev.ClaimID == v.ClaimID && prev.SupersededBy == "" {
			prev.SupersededBy = v.ID
		}
	}

	cp := *v
	s.verdicts[v.ID] = &cp

	if task != nil {
		tp := *task
		s.tasks[task.ID] = &tp
	}
	return nil
}

// GetVerdict retrieves a verdict by identifier.
func (s *MemoryStore) GetVerdict(ctx context.Context, id string) (*claims.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verdicts[id]
	if !ok {
		return nil, claims.NewNotFoundError("verdict", id)
	}
	cp := *v
	return &cp, nil
}

// LatestVerdictByClaim returns the authoritative verdict for a claim.
func (s *MemoryStore) LatestVerdictByClaim(ctx context.Context, claimID string) (*claims.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.verdicts {
		if v.ClaimID == claimID && v.SupersededBy == "" {
			cp := *v
			return &cp, nil
		}
	}
	return nil, claims.NewNotFoundError("verdict", claimID)
}

// SetVerdictOutcome updates a verdict's directive and reasoning.
func (s *MemoryStore) SetVerdictOutcome(ctx context.Context, id string, directive claims.Directive, reasoning string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verdicts[id]
	if !ok {
		return claims.NewNotFoundError("verdict", id)
	}
	v.Directive = directive
	v.Reasoning = reasoning
	return nil
}

// InsertTask stores a review task.
func (s *MemoryStore) InsertTask(ctx context.Context, t *claims.ReviewTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

// GetTask retrieves a review task by identifier.
func (s *MemoryStore) GetTask(ctx context.Context, id string) (*claims.ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, claims.NewNotFoundError("task", id)
	}
	cp := *t
	return &cp, nil
}

// ListOpenTasks returns open tasks, oldest first.
func (s *MemoryStore) ListOpenTasks(ctx context.Context, kind claims.TaskKind, limit int) ([]*claims.ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*claims.ReviewTask
	for _, t := range s.tasks {
		if t.Status != claims.TaskOpen {
			continue
		}
		if kind != "" && t.Kind != kind {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListCompletedTasks returns completed tasks, newest completion first.
func (s *MemoryStore) ListCompletedTasks(ctx context.Context, productID string, limit int) ([]*claims.ReviewTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*claims.ReviewTask
	for _, t := range s.tasks {
		if t.Status != claims.TaskCompleted {
			continue
		}
		if productID != "" && t.ProductID != productID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].CompletedAt, out[j].CompletedAt
		if ti == nil || tj == nil {
			return ti != nil
		}
		return ti.After(*tj)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CompleteTask marks an open task completed.
func (s *MemoryStore) CompleteTask(ctx context.Context, id string, actionTaken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status != claims.TaskOpen {
		return claims.NewNotFoundError("task", id)
	}
	now := time.Now()
	t.Status = claims.TaskCompleted
	t.ActionTaken = actionTaken
	t.CompletedAt = &now
	return nil
}

// InsertEvidenceValidation stores one document validation record.
func (s *MemoryStore) InsertEvidenceValidation(ctx context.Context, v *claims.EvidenceValidation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.validations = append(s.validations, &cp)
	return nil
}

// ListEvidenceValidations returns validation records for a product.
func (s *MemoryStore) ListEvidenceValidations(ctx context.Context, productID string) ([]*claims.EvidenceValidation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*claims.EvidenceValidation
	for _, v := range s.validations {
		if v.ProductID == productID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

// AppendAudit appends one entry to the audit log.
func (s *MemoryStore) AppendAudit(ctx context.Context, e *claims.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditSeq++
	cp := *e
	cp.ID = s.auditSeq
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now()
	}
	s.audit = append(s.audit, &cp)
	return nil
}

// RecentAudit returns the newest audit entries, newest first.
func (s *MemoryStore) RecentAudit(ctx context.Context, limit int) ([]*claims.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]*claims.AuditEntry, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.audit[i]
		out = append(out, &cp)
	}
	return out, nil
}

// VerdictCounts returns verdict counts grouped by directive.
func (s *MemoryStore) VerdictCounts(ctx context.Context, includeSuperseded bool) (map[claims.Directive]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[claims.Directive]int)
	for _, v := range s.verdicts {
		if !includeSuperseded && (v.SupersededBy != "" || v.Directive == claims.DirectiveSuperseded) {
			continue
		}
		out[v.Directive]++
	}
	return out, nil
}

// VerdictMethodCounts returns verdict counts grouped by deciding method.
func (s *MemoryStore) VerdictMethodCounts(ctx context.Context) (map[claims.Method]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[claims.Method]int)
	for _, v := range s.verdicts {
		out[v.Method]++
	}
	return out, nil
}

// TaskStatusCounts returns task counts grouped by status.
func (s *MemoryStore) TaskStatusCounts(ctx context.Context) (map[claims.TaskStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[claims.TaskStatus]int)
	for _, t := range s.tasks {
		out[t.Status]++
	}
	return out, nil
}

// TaskKindCounts returns task counts grouped by kind.
func (s *MemoryStore) TaskKindCounts(ctx context.Context) (map[claims.TaskKind]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[claims.TaskKind]int)
	for _, t := range s.tasks {
		out[t.Kind]++
	}
	return out, nil
}

// Totals returns the high-level record counts.
func (s *MemoryStore) Totals(ctx context.Context) (*Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := &Totals{
		Products: len(s.products),
		Claims:   len(s.claimRecs),
		Verdicts: len(s.verdicts),
	}
	for _, task := range s.tasks {
		switch task.Status {
		case claims.TaskOpen:
			t.OpenTasks++
		case claims.TaskCompleted:
			t.CompletedTasks++
		}
	}
	return t, nil
}

// Reset clears all records.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]*claims.ReviewTask)
	s.verdicts = make(map[string]*claims.Verdict)
	s.claimRecs = make(map[string]*claims.Claim)
	s.validations = nil
	s.products = make(map[string]*claims.Product)
	s.audit = nil
	s.auditSeq = 0
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
