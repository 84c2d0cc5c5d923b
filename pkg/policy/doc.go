// Package policy implements the deterministic rule engine: an ordered list
// of claim rules loaded from YAML and evaluated first-match-wins against
// normalized claim text.
//
// Rules compare with one of three modes (exact, contains, regex) and carry a
// directive that is either a final verdict (PASS, FAIL, REVIEW, WARNING) or
// conditional on the certificate evidence check (PASS_IF_CERT,
// REVIEW_IF_CERT_MISSING, REVIEW_IF_NO_THIRD_PARTY). Directives and regex
// patterns are validated at load time; an unrecognized directive is a policy
// load error, never a per-claim failure.
//
// The loaded Policy is immutable. Engine holds it behind an atomic pointer
// so concurrent workers share it read-only and Watcher can hot-swap it when
// the policy file changes.
package policy
