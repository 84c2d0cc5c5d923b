package policy

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"mercator-hq/ceres/pkg/claims"
)

// ruleFile is the YAML document shape of a policy file.
type ruleFile struct {
	Version string     `yaml:"version"`
	Rules   []ruleYAML `yaml:"rules"`
}

type ruleYAML struct {
	Claim            string   `yaml:"claim"`
	Match            string   `yaml:"match"`
	Pattern          string   `yaml:"pattern"`
	Directive        string   `yaml:"directive"`
	RequiredEvidence []string `yaml:"required_evidence"`
	Notes            string   `yaml:"notes"`
	Remediation      string   `yaml:"remediation"`
}

// Load parses a policy document. Rules keep their file order; directives and
// regex patterns are validated here so a malformed policy is rejected at
// load time rather than per claim.
func Load(data []byte) (*Policy, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	p := &Policy{Version: doc.Version, Rules: make([]Rule, 0, len(doc.Rules))}
	for i, ry := range doc.Rules {
		if ry.Claim == "" {
			return nil, fmt.Errorf("rule %d: missing claim text", i)
		}

		rule := Rule{
			Claim:       ry.Claim,
			Pattern:     ry.Pattern,
			Notes:       ry.Notes,
			Remediation: ry.Remediation,
		}

		switch MatchKind(ry.Match) {
		case MatchExact, "":
			rule.Match = MatchExact
		case MatchContains:
			rule.Match = MatchContains
		case MatchRegex:
			rule.Match = MatchRegex
		default:
			return nil, fmt.Errorf("rule %q: unknown match kind %q", ry.Claim, ry.Match)
		}

		switch d := RuleDirective(ry.Directive); d {
		case RulePass, RuleFail, RuleReview, RuleWarning,
			RulePassIfCert, RuleReviewIfCertMissing, RuleReviewIfNoThirdParty:
			rule.Directive = d
		default:
			return nil, &UnknownDirectiveError{Rule: ry.Claim, Directive: ry.Directive}
		}

		for _, cat := range ry.RequiredEvidence {
			rule.RequiredEvidence = append(rule.RequiredEvidence, claims.Category(cat))
		}

		if rule.Match == MatchRegex {
			src := rule.Pattern
			if src == "" {
				src = rule.Claim
			}
			re, err := regexp.Compile("(?i)" + src)
			if err != nil {
				return nil, &InvalidPatternError{Rule: ry.Claim, Pattern: src, Cause: err}
			}
			rule.re = re
		}

		p.Rules = append(p.Rules, rule)
	}

	return p, nil
}

// LoadFile reads and parses a policy file.
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Load(data)
}
