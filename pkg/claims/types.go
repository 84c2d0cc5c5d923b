package claims

import (
	"time"

	"github.com/google/uuid"
)

// Directive is the verdict category a claim receives after verification.
type Directive string

const (
	// DirectivePass marks a claim as compliant.
	DirectivePass Directive = "PASS"

	// DirectiveFail marks a claim as non-compliant.
	DirectiveFail Directive = "FAIL"

	// DirectiveReview marks a claim as requiring human review.
	DirectiveReview Directive = "REVIEW"

	// DirectiveWarning marks a claim as compliant with reservations.
	DirectiveWarning Directive = "WARNING"

	// DirectiveSuperseded marks a verdict whose claim was replaced by a
	// human-modified claim. Only the review state machine sets this.
	DirectiveSuperseded Directive = "SUPERSEDED"
)

// Method identifies how a verdict was produced.
type Method string

const (
	// MethodRule means a policy rule determined the verdict.
	MethodRule Method = "rule"

	// MethodML means the fallback classifier determined the verdict.
	MethodML Method = "ml"

	// MethodManual means a human produced or overrode the verdict.
	MethodManual Method = "manual"
)

// Provenance records where a claim text came from.
type Provenance string

const (
	ProvenanceSupplier    Provenance = "supplier_declared"
	ProvenanceDescription Provenance = "description"
	ProvenanceLabelOCR    Provenance = "label_ocr"
	ProvenanceHuman       Provenance = "human_modified"
)

// EvidenceStatus is the outcome of a certificate evidence check.
type EvidenceStatus string

const (
	// EvidenceFound means at least one document matched a required category.
	EvidenceFound EvidenceStatus = "FOUND"

	// EvidenceMissing means no document matched any required category.
	EvidenceMissing EvidenceStatus = "MISSING"

	// EvidenceNotRequired means the matched rule (or absence of one) did not
	// require any evidence category.
	EvidenceNotRequired EvidenceStatus = "NOT_REQUIRED"
)

// Category is a derived evidence-document category from the fixed taxonomy.
type Category string

const (
	CategoryLabNutrition        Category = "Lab Nutrition Analysis"
	CategoryAllergenLab         Category = "Allergen Lab Test"
	CategorySoilAssociation     Category = "Soil Association Certification"
	CategoryOrganic             Category = "Organic Certification"
	CategoryFairtrade           Category = "Fairtrade License"
	CategoryCarbonAudit         Category = "Carbon Neutral Audit"
	CategoryThirdPartyAudit     Category = "Third-Party Audit"
	CategorySupplierDeclaration Category = "Supplier Declaration"
	CategoryGMOReport           Category = "GMO Test Report"
	CategoryVeganStatement      Category = "Vegan Conformity Statement"
	CategoryOther               Category = "Other Certificate"
)

// ValidationStatus is the validity state of a single evidence document.
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "VALID"
	ValidationMissing ValidationStatus = "MISSING"
	ValidationError   ValidationStatus = "ERROR"
)

// TaskKind classifies a review task by the action it asks of a reviewer.
type TaskKind string

const (
	TaskReview          TaskKind = "review"
	TaskReject          TaskKind = "reject"
	TaskModify          TaskKind = "modify"
	TaskRequestEvidence TaskKind = "request_evidence"
	TaskSupplierComms   TaskKind = "supplier_communication"
	TaskEscalation      TaskKind = "escalation"
)

// TaskStatus is the lifecycle state of a review task.
type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

// Product is the owning entity for claims and evidence documents.
type Product struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	EvidenceRefs []string  `json:"evidence_refs"` // raw document references (paths/filenames)
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claim is a textual assertion about a product subject to verification.
// Claims are immutable: superseding a claim creates a new Claim record.
type Claim struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"product_id"`
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
	Confidence float64    `json:"confidence"` // [0,1]
	CreatedAt  time.Time  `json:"created_at"`
}

// Verdict is the decision record produced for a single claim.
//
// Only the latest verdict for a claim is authoritative. Older verdicts are
// retained for audit and carry SupersededBy pointing at the verdict that
// replaced them, so "latest wins" never depends on row ordering.
type Verdict struct {
	ID           string         `json:"id"`
	ProductID    string         `json:"product_id"`
	ClaimID      string         `json:"claim_id"`
	Directive    Directive      `json:"directive"`
	Method       Method         `json:"method"`
	RuleName     string         `json:"rule_name,omitempty"`     // set when Method == rule
	MLConfidence *float64       `json:"ml_confidence,omitempty"` // set when Method == ml
	Evidence     EvidenceStatus `json:"evidence_status"`
	Reasoning    string         `json:"reasoning"`
	SupersededBy string         `json:"superseded_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ReviewTask is a unit of pending human work tied to one verdict.
type ReviewTask struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	VerdictID   string     `json:"verdict_id"`
	Kind        TaskKind   `json:"kind"`
	Status      TaskStatus `json:"status"`
	Description string     `json:"description"`
	ActionTaken string     `json:"action_taken,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EvidenceDocument is a single product evidence reference with its derived
// category and validity state.
type EvidenceDocument struct {
	Reference string           `json:"reference"`
	Category  Category         `json:"category"`
	Status    ValidationStatus `json:"status"`
}

// EvidenceValidation is the persisted record of one document validation,
// written each time verification inspects a product's evidence.
type EvidenceValidation struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	Reference   string           `json:"reference"`
	Category    Category         `json:"category"`
	Status      ValidationStatus `json:"status"`
	Details     string           `json:"details,omitempty"`
	ValidatedAt time.Time        `json:"validated_at"`
}

// AuditEntry is an append-only record of a state-changing action.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	SubjectID string         `json:"subject_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewID returns a new UUID v4 string for entity identifiers.
func NewID() string {
	return uuid.NewString()
}

// ValidDirective reports whether d is a known verdict directive.
func ValidDirective(d Directive) bool {
	switch d {
	case DirectivePass, DirectiveFail, DirectiveReview, DirectiveWarning, DirectiveSuperseded:
		return true
	}
	return false
}

// ValidProvenance reports whether p is a known claim provenance tag.
func ValidProvenance(p Provenance) bool {
	switch p {
	case ProvenanceSupplier, ProvenanceDescription, ProvenanceLabelOCR, ProvenanceHuman:
		return true
	}
	return false
}
