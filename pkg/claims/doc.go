// Package claims defines the domain records shared by the verification
// pipeline: products, claims, verdicts, review tasks, evidence documents,
// and audit entries, together with the typed errors every component raises.
//
// Records are immutable once written. A claim is never edited in place; a
// human modification creates a replacement Claim, and the old claim's
// verdict is marked SUPERSEDED. Only the latest verdict for a claim is
// authoritative; earlier verdicts remain for audit with SupersededBy set.
package claims
