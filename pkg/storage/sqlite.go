package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
	_ "modernc.org/sqlite"          // pure-Go SQLite driver

	"mercator-hq/ceres/pkg/claims"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Driver selects the SQL driver: "sqlite3" (CGO, default) or
	// "sqlite" (pure Go, modernc).
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/ceres.db",
		Driver:       "sqlite3",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite storage backend. It initializes the
// database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite3"
	}

	logger := slog.Default().With("component", "storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, claims.NewStorageError(config.Driver, "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return claims.NewStorageError(s.config.Driver, "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return claims.NewStorageError(s.config.Driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return claims.NewStorageError(s.config.Driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return claims.NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return claims.NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// timestamps are stored as RFC3339Nano text so both drivers round-trip
// identically.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// InsertProduct persists a product record.
func (s *SQLiteStore) InsertProduct(ctx context.Context, p *claims.Product) error {
	refs, err := json.Marshal(p.EvidenceRefs)
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_product", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO products (id, code, name, description, evidence_refs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.Name, p.Description, string(refs), encodeTime(p.CreatedAt), encodeTime(p.UpdatedAt))
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_product", err)
	}
	return nil
}

// GetProduct retrieves a product by identifier.
func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*claims.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, description, evidence_refs, created_at, updated_at
		FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "get_product", err)
	}
	return p, nil
}

// ListProducts returns all products ordered by code.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]*claims.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, description, evidence_refs, created_at, updated_at
		FROM products ORDER BY code`)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "list_products", err)
	}
	defer rows.Close()

	var out []*claims.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "list_products", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (*claims.Product, error) {
	var p claims.Product
	var refs sql.NullString
	var desc sql.NullString
	var created, updated string
	if err := r.Scan(&p.ID, &p.Code, &p.Name, &desc, &refs, &created, &updated); err != nil {
		return nil, err
	}
	p.Description = desc.String
	if refs.Valid && refs.String != "" {
		if err := json.Unmarshal([]byte(refs.String), &p.EvidenceRefs); err != nil {
			return nil, err
		}
	}
	p.CreatedAt = decodeTime(created)
	p.UpdatedAt = decodeTime(updated)
	return &p, nil
}

// InsertClaim persists an immutable claim record.
func (s *SQLiteStore) InsertClaim(ctx context.Context, c *claims.Claim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (id, product_id, claim_text, provenance, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProductID, c.Text, string(c.Provenance), c.Confidence, encodeTime(c.CreatedAt))
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_claim", err)
	}
	return nil
}

// GetClaim retrieves a claim by identifier.
func (s *SQLiteStore) GetClaim(ctx context.Context, id string) (*claims.Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, claim_text, provenance, confidence, created_at
		FROM claims WHERE id = ?`, id)

	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.NewNotFoundError("claim", id)
	}
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "get_claim", err)
	}
	return c, nil
}

// ListClaimsByProduct returns all claims for a product in insertion order.
func (s *SQLiteStore) ListClaimsByProduct(ctx context.Context, productID string) ([]*claims.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, claim_text, provenance, confidence, created_at
		FROM claims WHERE product_id = ? ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "list_claims", err)
	}
	defer rows.Close()

	var out []*claims.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "list_claims", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProductIDsWithClaims returns the distinct product identifiers that have
// at least one claim.
func (s *SQLiteStore) ListProductIDsWithClaims(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT product_id FROM claims ORDER BY product_id`)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "list_product_ids", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "list_product_ids", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanClaim(r rowScanner) (*claims.Claim, error) {
	var c claims.Claim
	var prov string
	var created string
	if err := r.Scan(&c.ID, &c.ProductID, &c.Text, &prov, &c.Confidence, &created); err != nil {
		return nil, err
	}
	c.Provenance = claims.Provenance(prov)
	c.CreatedAt = decodeTime(created)
	return &c, nil
}

// InsertVerdict persists a verdict and, when task is non-nil, its dependent
// review task in the same transaction. Any previously authoritative verdict
// for the same claim is retired by setting its superseded_by column.
func (s *SQLiteStore) InsertVerdict(ctx context.Context, v *claims.Verdict, task *claims.ReviewTask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_verdict", err)
	}
	defer tx.Rollback()

	// Retire the previous latest verdict for this claim.
	_, err = tx.ExecContext(ctx, `
		UPDATE verdicts SET superseded_by = ?
		WHERE claim_id = ? AND superseded_by IS NULL`, v.ID, v.ClaimID)
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_verdict", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO verdicts (id, product_id, claim_id, directive, method, rule_name,
			ml_confidence, evidence_status, reasoning, superseded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
		v.ID, v.ProductID, v.ClaimID, string(v.Directive), string(v.Method),
		nullString(v.RuleName), nullFloat(v.MLConfidence), string(v.Evidence),
		v.Reasoning, encodeTime(v.CreatedAt))
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_verdict", err)
	}

	// The task row is written strictly after its verdict.
	if task != nil {
		if err := insertTaskTx(ctx, tx, task); err != nil {
			return claims.NewStorageError(s.config.Driver, "insert_task", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_verdict", err)
	}
	return nil
}

// GetVerdict retrieves a verdict by identifier.
func (s *SQLiteStore) GetVerdict(ctx context.Context, id string) (*claims.Verdict, error) {
	row := s.db.QueryRowContext(ctx, verdictSelect+` WHERE id = ?`, id)

	v, err := scanVerdict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.NewNotFoundError("verdict", id)
	}
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "get_verdict", err)
	}
	return v, nil
}

// LatestVerdictByClaim returns the authoritative (non-retired) verdict for a
// claim.
func (s *SQLiteStore) LatestVerdictByClaim(ctx context.Context, claimID string) (*claims.Verdict, error) {
	row := s.db.QueryRowContext(ctx, verdictSelect+`
		WHERE claim_id = ? AND superseded_by IS NULL`, claimID)

	v, err := scanVerdict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.NewNotFoundError("verdict", claimID)
	}
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "latest_verdict", err)
	}
	return v, nil
}

// SetVerdictOutcome updates a verdict's directive and reasoning. Used by the
// human override state machine for approve/reject/supersede transitions.
func (s *SQLiteStore) SetVerdictOutcome(ctx context.Context, id string, directive claims.Directive, reasoning string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verdicts SET directive = ?, reasoning = ? WHERE id = ?`,
		string(directive), reasoning, id)
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "set_verdict_outcome", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "set_verdict_outcome", err)
	}
	if n == 0 {
		return claims.NewNotFoundError("verdict", id)
	}
	return nil
}

const verdictSelect = `
	SELECT id, product_id, claim_id, directive, method, rule_name,
		ml_confidence, evidence_status, reasoning, superseded_by, created_at
	FROM verdicts`

func scanVerdict(r rowScanner) (*claims.Verdict, error) {
	var v claims.Verdict
	var directive, method, evStatus, created string
	var ruleName, supersededBy, reasoning sql.NullString
	var mlConf sql.NullFloat64
	err := r.Scan(&v.ID, &v.ProductID, &v.ClaimID, &directive, &method, &ruleName,
		&mlConf, &evStatus, &reasoning, &supersededBy, &created)
	if err != nil {
		return nil, err
	}
	v.Directive = claims.Directive(directive)
	v.Method = claims.Method(method)
	v.RuleName = ruleName.String
	if mlConf.Valid {
		c := mlConf.Float64
		v.MLConfidence = &c
	}
	v.Evidence = claims.EvidenceStatus(evStatus)
	v.Reasoning = reasoning.String
	v.SupersededBy = supersededBy.String
	v.CreatedAt = decodeTime(created)
	return &v, nil
}

// InsertTask persists a follow-up review task for an existing verdict.
func (s *SQLiteStore) InsertTask(ctx context.Context, t *claims.ReviewTask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_task", err)
	}
	defer tx.Rollback()

	if err := insertTaskTx(ctx, tx, t); err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_task", err)
	}
	if err := tx.Commit(); err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_task", err)
	}
	return nil
}

func insertTaskTx(ctx context.Context, tx *sql.Tx, t *claims.ReviewTask) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, product_id, verdict_id, kind, status, description, action_taken, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?)`,
		t.ID, t.ProductID, t.VerdictID, string(t.Kind), string(t.Status), t.Description, encodeTime(t.CreatedAt))
	return err
}

// GetTask retrieves a review task by identifier.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*claims.ReviewTask, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.NewNotFoundError("task", id)
	}
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "get_task", err)
	}
	return t, nil
}

// ListOpenTasks returns open tasks, oldest first, optionally filtered by
// kind. limit <= 0 means no limit.
func (s *SQLiteStore) ListOpenTasks(ctx context.Context, kind claims.TaskKind, limit int) ([]*claims.ReviewTask, error) {
	query := taskSelect + ` WHERE status = 'open'`
	args := []any{}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "list_open_tasks", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListCompletedTasks returns completed tasks, newest completion first,
// optionally restricted to one product.
func (s *SQLiteStore) ListCompletedTasks(ctx context.Context, productID string, limit int) ([]*claims.ReviewTask, error) {
	query := taskSelect + ` WHERE status = 'completed'`
	args := []any{}
	if productID != "" {
		query += ` AND product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY completed_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "list_completed_tasks", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// CompleteTask marks an open task completed with its action record. It is a
// no-op returning NotFoundError when the task does not exist or is no longer
// open.
func (s *SQLiteStore) CompleteTask(ctx context.Context, id string, actionTaken string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = 'completed', action_taken = ?, completed_at = ?
		WHERE id = ? AND status = 'open'`,
		actionTaken, encodeTime(time.Now()), id)
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "complete_task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "complete_task", err)
	}
	if n == 0 {
		return claims.NewNotFoundError("task", id)
	}
	return nil
}

const taskSelect = `
	SELECT id, product_id, verdict_id, kind, status, description, action_taken, completed_at, created_at
	FROM tasks`

func scanTask(r rowScanner) (*claims.ReviewTask, error) {
	var t claims.ReviewTask
	var kind, status, created string
	var desc, action, completed sql.NullString
	err := r.Scan(&t.ID, &t.ProductID, &t.VerdictID, &kind, &status, &desc, &action, &completed, &created)
	if err != nil {
		return nil, err
	}
	t.Kind = claims.TaskKind(kind)
	t.Status = claims.TaskStatus(status)
	t.Description = desc.String
	t.ActionTaken = action.String
	if completed.Valid {
		ct := decodeTime(completed.String)
		t.CompletedAt = &ct
	}
	t.CreatedAt = decodeTime(created)
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]*claims.ReviewTask, error) {
	var out []*claims.ReviewTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertEvidenceValidation persists one document validation record.
func (s *SQLiteStore) InsertEvidenceValidation(ctx context.Context, v *claims.EvidenceValidation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evidence_validations (id, product_id, reference, category, status, details, validated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ProductID, v.Reference, string(v.Category), string(v.Status), v.Details, encodeTime(v.ValidatedAt))
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "insert_validation", err)
	}
	return nil
}

// ListEvidenceValidations returns validation records for a product.
func (s *SQLiteStore) ListEvidenceValidations(ctx context.Context, productID string) ([]*claims.EvidenceValidation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, reference, category, status, details, validated_at
		FROM evidence_validations WHERE product_id = ? ORDER BY validated_at, id`, productID)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "list_validations", err)
	}
	defer rows.Close()

	var out []*claims.EvidenceValidation
	for rows.Next() {
		var v claims.EvidenceValidation
		var cat, status, validated string
		var details sql.NullString
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Reference, &cat, &status, &details, &validated); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "list_validations", err)
		}
		v.Category = claims.Category(cat)
		v.Status = claims.ValidationStatus(status)
		v.Details = details.String
		v.ValidatedAt = decodeTime(validated)
		out = append(out, &v)
	}
	return out, rows.Err()
}

// AppendAudit appends one entry to the audit log.
func (s *SQLiteStore) AppendAudit(ctx context.Context, e *claims.AuditEntry) error {
	var details any
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return claims.NewStorageError(s.config.Driver, "append_audit", err)
		}
		details = string(b)
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (actor, action, subject_id, details, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		e.Actor, e.Action, nullString(e.SubjectID), details, encodeTime(ts))
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "append_audit", err)
	}
	return nil
}

// RecentAudit returns the newest audit entries, newest first.
func (s *SQLiteStore) RecentAudit(ctx context.Context, limit int) ([]*claims.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor, action, subject_id, details, timestamp
		FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "recent_audit", err)
	}
	defer rows.Close()

	var out []*claims.AuditEntry
	for rows.Next() {
		var e claims.AuditEntry
		var subject, details sql.NullString
		var ts string
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &subject, &details, &ts); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "recent_audit", err)
		}
		e.SubjectID = subject.String
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, claims.NewStorageError(s.config.Driver, "recent_audit", err)
			}
		}
		e.Timestamp = decodeTime(ts)
		out = append(out, &e)
	}
	return out, rows.Err()
}

// VerdictCounts returns verdict counts grouped by directive. When
// includeSuperseded is false, retired verdicts and SUPERSEDED directives are
// excluded so only authoritative decisions are counted.
func (s *SQLiteStore) VerdictCounts(ctx context.Context, includeSuperseded bool) (map[claims.Directive]int, error) {
	query := `SELECT directive, COUNT(*) FROM verdicts`
	if !includeSuperseded {
		query += ` WHERE superseded_by IS NULL AND directive != 'SUPERSEDED'`
	}
	query += ` GROUP BY directive`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "verdict_counts", err)
	}
	defer rows.Close()

	out := make(map[claims.Directive]int)
	for rows.Next() {
		var d string
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "verdict_counts", err)
		}
		out[claims.Directive(d)] = n
	}
	return out, rows.Err()
}

// VerdictMethodCounts returns verdict counts grouped by deciding method.
func (s *SQLiteStore) VerdictMethodCounts(ctx context.Context) (map[claims.Method]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT method, COUNT(*) FROM verdicts GROUP BY method`)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "method_counts", err)
	}
	defer rows.Close()

	out := make(map[claims.Method]int)
	for rows.Next() {
		var m string
		var n int
		if err := rows.Scan(&m, &n); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "method_counts", err)
		}
		out[claims.Method(m)] = n
	}
	return out, rows.Err()
}

// TaskStatusCounts returns task counts grouped by status.
func (s *SQLiteStore) TaskStatusCounts(ctx context.Context) (map[claims.TaskStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "task_status_counts", err)
	}
	defer rows.Close()

	out := make(map[claims.TaskStatus]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "task_status_counts", err)
		}
		out[claims.TaskStatus(st)] = n
	}
	return out, rows.Err()
}

// TaskKindCounts returns task counts grouped by kind.
func (s *SQLiteStore) TaskKindCounts(ctx context.Context) (map[claims.TaskKind]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM tasks GROUP BY kind`)
	if err != nil {
		return nil, claims.NewStorageError(s.config.Driver, "task_kind_counts", err)
	}
	defer rows.Close()

	out := make(map[claims.TaskKind]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "task_kind_counts", err)
		}
		out[claims.TaskKind(k)] = n
	}
	return out, rows.Err()
}

// Totals returns the high-level record counts for the governance overview.
func (s *SQLiteStore) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM products`, &t.Products},
		{`SELECT COUNT(*) FROM claims`, &t.Claims},
		{`SELECT COUNT(*) FROM verdicts`, &t.Verdicts},
		{`SELECT COUNT(*) FROM tasks WHERE status = 'open'`, &t.OpenTasks},
		{`SELECT COUNT(*) FROM tasks WHERE status = 'completed'`, &t.CompletedTasks},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, claims.NewStorageError(s.config.Driver, "totals", err)
		}
	}
	return &t, nil
}

// Reset atomically clears all tables in dependency order.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return claims.NewStorageError(s.config.Driver, "reset", err)
	}
	defer tx.Rollback()

	// Order matters: children before parents, audit last.
	tables := []string{"tasks", "verdicts", "claims", "evidence_validations", "products", "audit_log"}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return claims.NewStorageError(s.config.Driver, "reset", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return claims.NewStorageError(s.config.Driver, "reset", err)
	}

	s.logger.Info("store reset, all tables cleared")
	return nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
