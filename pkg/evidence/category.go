package evidence

import (
	"strings"

	"mercator-hq/ceres/pkg/claims"
)

// categoryRule maps filename keywords to a category. All listed keywords
// must appear in the lower-cased reference for the rule to apply; rules are
// checked in order and the first hit wins.
type categoryRule struct {
	keywords []string
	category claims.Category
}

// The taxonomy is fixed. Anything unrecognized classifies as Other.
var categoryRules = []categoryRule{
	{[]string{"lab", "nutrition"}, claims.CategoryLabNutrition},
	{[]string{"lab", "allergen"}, claims.CategoryAllergenLab},
	{[]string{"soil", "association"}, claims.CategorySoilAssociation},
	{[]string{"organic"}, claims.CategoryOrganic},
	{[]string{"fairtrade"}, claims.CategoryFairtrade},
	{[]string{"carbon"}, claims.CategoryCarbonAudit},
	{[]string{"third", "party"}, claims.CategoryThirdPartyAudit},
	{[]string{"supplier", "declaration"}, claims.CategorySupplierDeclaration},
	{[]string{"gmo"}, claims.CategoryGMOReport},
	{[]string{"vegan"}, claims.CategoryVeganStatement},
}

// DeriveCategory classifies a document reference into the fixed taxonomy by
// keyword inspection of its filename. The function is pure: the same
// reference always yields the same category.
func DeriveCategory(reference string) claims.Category {
	lower := strings.ToLower(reference)
	for _, rule := range categoryRules {
		if containsAll(lower, rule.keywords) {
			return rule.category
		}
	}
	return claims.CategoryOther
}

func containsAll(s string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(s, kw) {
			return false
		}
	}
	return true
}

// ThirdParty reports whether a document reference is independently sourced,
// i.e. not a supplier self-declaration.
func ThirdParty(reference string) bool {
	lower := strings.ToLower(reference)
	return !strings.Contains(lower, "supplier") && !strings.Contains(lower, "declaration")
}
