// Package decision implements the per-claim decision resolver.
//
// Each claim moves through a fixed pipeline: the rule engine is consulted
// first; a matched conditional directive is resolved against the certificate
// evidence check; an unmatched claim falls back to the classifier. The
// outcome is persisted as exactly one immutable verdict with human-readable
// reasoning, plus one review task whenever the directive is REVIEW, FAIL,
// or WARNING (PASS never creates a task).
//
// Batch verification isolates failures per item: a claim or product that
// errors is recorded in the report's error list and audited, and processing
// continues with the next item.
package decision
