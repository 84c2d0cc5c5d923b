package policy

import (
	"strings"
	"sync/atomic"
)

// Engine matches claim texts against an ordered policy. The policy is
// read-only after load and may be shared across concurrent workers; Reload
// swaps it atomically for hot reloads.
type Engine struct {
	policy atomic.Pointer[Policy]
}

// NewEngine creates an engine over the given policy. A nil policy behaves
// as an empty rule set.
func NewEngine(p *Policy) *Engine {
	if p == nil {
		p = Empty()
	}
	e := &Engine{}
	e.policy.Store(p)
	return e
}

// Policy returns the currently loaded policy.
func (e *Engine) Policy() *Policy {
	return e.policy.Load()
}

// Reload atomically replaces the loaded policy.
func (e *Engine) Reload(p *Policy) {
	if p == nil {
		p = Empty()
	}
	e.policy.Store(p)
}

// Normalize lower-cases a claim text and collapses internal whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Match tests a claim text against the policy in stored order and returns
// the first matching rule's directive and metadata. The second return is
// false when no rule matches; an empty policy yields no match for every
// claim, pushing it to the fallback classifier.
func (e *Engine) Match(claimText string) (*MatchResult, bool) {
	normalized := Normalize(claimText)
	p := e.policy.Load()

	for i := range p.Rules {
		rule := &p.Rules[i]
		if !rule.matches(normalized) {
			continue
		}
		return &MatchResult{
			Rule:             rule,
			Directive:        rule.Directive,
			RequiredEvidence: rule.RequiredEvidence,
			Notes:            rule.Notes,
			Remediation:      rule.Remediation,
		}, true
	}
	return nil, false
}

func (r *Rule) matches(normalizedClaim string) bool {
	switch r.Match {
	case MatchExact:
		return normalizedClaim == strings.ToLower(r.Claim)
	case MatchContains:
		return strings.Contains(normalizedClaim, strings.ToLower(r.Claim))
	case MatchRegex:
		return r.re != nil && r.re.MatchString(normalizedClaim)
	}
	return false
}
