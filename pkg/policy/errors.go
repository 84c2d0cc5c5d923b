package policy

import "fmt"

// UnknownDirectiveError indicates a rule carried a directive outside the
// fixed set. Raised at load time so a bad policy fails fast, never per claim.
type UnknownDirectiveError struct {
	Rule      string // rule claim text
	Directive string // unrecognized directive value
}

// Error implements the error interface.
func (e *UnknownDirectiveError) Error() string {
	return fmt.Sprintf("rule %q: unknown directive %q", e.Rule, e.Directive)
}

// InvalidPatternError indicates a regex rule's pattern failed to compile.
type InvalidPatternError struct {
	Rule    string // rule claim text
	Pattern string // pattern source
	Cause   error  // compile error
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("rule %q: invalid pattern %q: %v", e.Rule, e.Pattern, e.Cause)
}

// Unwrap returns the underlying compile error.
func (e *InvalidPatternError) Unwrap() error {
	return e.Cause
}
