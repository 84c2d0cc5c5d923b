package evidence

import (
	"os"
	"path/filepath"

	"mercator-hq/ceres/pkg/claims"
)

// CheckResult is the outcome of a certificate evidence check.
type CheckResult struct {
	// Status is FOUND, MISSING, or NOT_REQUIRED.
	Status claims.EvidenceStatus

	// Matched lists the documents whose category satisfied a requirement.
	Matched []claims.EvidenceDocument

	// Documents lists every inspected document with its derived category.
	Documents []claims.EvidenceDocument

	// HasThirdParty is true when at least one document is independently
	// sourced rather than a supplier declaration.
	HasThirdParty bool
}

// Checker performs certificate evidence checks. It is a pure query used by
// both the rule engine's conditional resolution and standalone reporting.
//
// When BaseDir is set, each reference is also checked for existence on disk;
// a failed stat downgrades that document to status ERROR without failing
// the check.
type Checker struct {
	// BaseDir, if non-empty, is the directory document references are
	// resolved against for existence checks.
	BaseDir string
}

// NewChecker creates a checker. baseDir may be empty to skip file checks.
func NewChecker(baseDir string) *Checker {
	return &Checker{BaseDir: baseDir}
}

// Inspect derives a category and validity state for each reference.
func (c *Checker) Inspect(references []string) []claims.EvidenceDocument {
	docs := make([]claims.EvidenceDocument, 0, len(references))
	for _, ref := range references {
		doc := claims.EvidenceDocument{
			Reference: ref,
			Category:  DeriveCategory(ref),
			Status:    claims.ValidationValid,
		}
		if c.BaseDir != "" {
			if _, err := os.Stat(filepath.Join(c.BaseDir, ref)); err != nil {
				if os.IsNotExist(err) {
					doc.Status = claims.ValidationMissing
				} else {
					doc.Status = claims.ValidationError
				}
			}
		}
		docs = append(docs, doc)
	}
	return docs
}

// Check determines whether the product's evidence satisfies the required
// categories.
//
// With no required categories the claim evidence gate is inactive and the
// status is NOT_REQUIRED; the documents are still inspected so HasThirdParty
// is always meaningful. Otherwise the status is FOUND iff at least one
// document's derived category is in the required set.
func (c *Checker) Check(references []string, required []claims.Category) *CheckResult {
	docs := c.Inspect(references)

	result := &CheckResult{Documents: docs}
	for _, doc := range docs {
		if ThirdParty(doc.Reference) {
			result.HasThirdParty = true
		}
	}

	if len(required) == 0 {
		result.Status = claims.EvidenceNotRequired
		return result
	}

	requiredSet := make(map[claims.Category]bool, len(required))
	for _, cat := range required {
		requiredSet[cat] = true
	}

	for _, doc := range docs {
		if requiredSet[doc.Category] {
			result.Matched = append(result.Matched, doc)
		}
	}

	if len(result.Matched) > 0 {
		result.Status = claims.EvidenceFound
	} else {
		result.Status = claims.EvidenceMissing
	}
	return result
}
