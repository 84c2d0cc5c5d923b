package policy

import (
	"regexp"

	"mercator-hq/ceres/pkg/claims"
)

// MatchKind selects how a rule's claim text is compared against a claim.
type MatchKind string

const (
	// MatchExact requires case-insensitive full-string equality.
	MatchExact MatchKind = "exact"

	// MatchContains requires the rule text to be a substring of the claim.
	MatchContains MatchKind = "contains"

	// MatchRegex searches the rule's pattern (unanchored) in the claim.
	MatchRegex MatchKind = "regex"
)

// RuleDirective is the directive a policy rule carries. Beyond the plain
// verdict directives it includes the conditional forms resolved against the
// certificate evidence check.
type RuleDirective string

const (
	RulePass    RuleDirective = "PASS"
	RuleFail    RuleDirective = "FAIL"
	RuleReview  RuleDirective = "REVIEW"
	RuleWarning RuleDirective = "WARNING"

	// RulePassIfCert passes when required evidence is found, otherwise
	// requires review.
	RulePassIfCert RuleDirective = "PASS_IF_CERT"

	// RuleReviewIfCertMissing passes when required evidence is found,
	// otherwise requires review.
	RuleReviewIfCertMissing RuleDirective = "REVIEW_IF_CERT_MISSING"

	// RuleReviewIfNoThirdParty passes when any third-party evidence exists,
	// otherwise requires review.
	RuleReviewIfNoThirdParty RuleDirective = "REVIEW_IF_NO_THIRD_PARTY"
)

// Conditional reports whether the directive depends on the evidence check.
func (d RuleDirective) Conditional() bool {
	switch d {
	case RulePassIfCert, RuleReviewIfCertMissing, RuleReviewIfNoThirdParty:
		return true
	}
	return false
}

// Resolve maps the rule directive to a final verdict directive given the
// evidence check outcome. Unconditional directives pass through unchanged.
func (d RuleDirective) Resolve(evidenceFound, hasThirdParty bool) claims.Directive {
	switch d {
	case RulePassIfCert, RuleReviewIfCertMissing:
		if evidenceFound {
			return claims.DirectivePass
		}
		return claims.DirectiveReview
	case RuleReviewIfNoThirdParty:
		if hasThirdParty {
			return claims.DirectivePass
		}
		return claims.DirectiveReview
	case RulePass:
		return claims.DirectivePass
	case RuleFail:
		return claims.DirectiveFail
	case RuleWarning:
		return claims.DirectiveWarning
	default:
		return claims.DirectiveReview
	}
}

// Rule is a single parsed policy rule. Rules are immutable after load.
type Rule struct {
	// Claim is the rule's claim text, also used as the rule name.
	Claim string

	// Match selects the comparison mode.
	Match MatchKind

	// Pattern is the regex source for MatchRegex rules. Empty means the
	// claim text itself is the pattern.
	Pattern string

	// Directive is the parsed directive, possibly conditional.
	Directive RuleDirective

	// RequiredEvidence lists the evidence categories the rule requires.
	RequiredEvidence []claims.Category

	// Notes and Remediation feed the verdict's reasoning text.
	Notes       string
	Remediation string

	// re is the compiled pattern for regex rules, built at load time.
	re *regexp.Regexp
}

// Name returns the rule's identifying name (its claim text).
func (r *Rule) Name() string {
	return r.Claim
}

// Policy is an ordered, immutable sequence of rules. Earlier rules always
// win over later ones.
type Policy struct {
	Version string
	Rules   []Rule
}

// Empty returns a policy with no rules. Every claim evaluated against it
// falls through to the fallback classifier.
func Empty() *Policy {
	return &Policy{}
}

// MatchResult carries the first matching rule's directive and metadata.
type MatchResult struct {
	Rule             *Rule
	Directive        RuleDirective
	RequiredEvidence []claims.Category
	Notes            string
	Remediation      string
}
