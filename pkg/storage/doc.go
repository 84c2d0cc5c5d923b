// Package storage provides persistence for the verification core: products,
// claims, verdicts, review tasks, evidence validations, and the audit log.
//
// Two backends implement the Store interface:
//
//   - SQLiteStore: the production backend. Runs in WAL mode and supports
//     either the CGO driver (mattn/go-sqlite3) or the pure-Go driver
//     (modernc.org/sqlite), selected by SQLiteConfig.Driver.
//   - MemoryStore: an in-memory twin for tests.
//
// Writes are individually atomic. InsertVerdict writes a verdict and its
// dependent review task in one transaction, verdict first, and retires the
// claim's previous authoritative verdict by setting superseded_by in the
// same transaction. Reset clears every table in dependency order
// (tasks, verdicts, claims, evidence validations, products, audit log).
package storage
