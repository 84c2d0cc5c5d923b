package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the compliance database schema.
const Schema = `
-- Products table (owning entity for claims and evidence)
CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    code TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    evidence_refs TEXT, -- JSON array of document references
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Claims table (immutable claim records)
CREATE TABLE IF NOT EXISTS claims (
    id TEXT PRIMARY KEY,
    product_id TEXT NOT NULL,
    claim_text TEXT NOT NULL,
    provenance TEXT NOT NULL,
    confidence REAL NOT NULL DEFAULT 1.0,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (product_id) REFERENCES products (id)
);

-- Verdicts table (one row per decision; superseded_by retires old rows)
CREATE TABLE IF NOT EXISTS verdicts (
    id TEXT PRIMARY KEY,
    product_id TEXT NOT NULL,
    claim_id TEXT NOT NULL,
    directive TEXT NOT NULL,
    method TEXT NOT NULL,
    rule_name TEXT,
    ml_confidence REAL,
    evidence_status TEXT NOT NULL,
    reasoning TEXT,
    superseded_by TEXT,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (product_id) REFERENCES products (id),
    FOREIGN KEY (claim_id) REFERENCES claims (id)
);

-- Review tasks table
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    product_id TEXT NOT NULL,
    verdict_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open',
    description TEXT,
    action_taken TEXT,
    completed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (product_id) REFERENCES products (id),
    FOREIGN KEY (verdict_id) REFERENCES verdicts (id)
);

-- Evidence validation records
CREATE TABLE IF NOT EXISTS evidence_validations (
    id TEXT PRIMARY KEY,
    product_id TEXT NOT NULL,
    reference TEXT NOT NULL,
    category TEXT NOT NULL,
    status TEXT NOT NULL,
    details TEXT,
    validated_at TIMESTAMP NOT NULL,
    FOREIGN KEY (product_id) REFERENCES products (id)
);

-- Audit log (append only)
CREATE TABLE IF NOT EXISTS audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    actor TEXT NOT NULL,
    action TEXT NOT NULL,
    subject_id TEXT,
    details TEXT, -- JSON with additional context
    timestamp TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_claims_product ON claims(product_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_claim ON verdicts(claim_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_product ON verdicts(product_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_verdict ON tasks(verdict_id);
CREATE INDEX IF NOT EXISTS idx_validations_product ON evidence_validations(product_id);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);
`

// InsertSchemaVersion records the schema version on initialization.
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version, applied_at)
VALUES (?, CURRENT_TIMESTAMP);
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
