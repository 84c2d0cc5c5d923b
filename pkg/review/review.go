package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/storage"
	"mercator-hq/ceres/pkg/telemetry/metrics"
)

const auditActor = "review"

// Action is a human override action applied to an open review task.
type Action string

const (
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionRequestEvidence Action = "request_evidence"
	ActionModify          Action = "modify"
	ActionEscalate        Action = "escalate"
)

// ActionInput carries the optional context for an action.
type ActionInput struct {
	// Reasoning is the human reasoning appended to the verdict or task.
	Reasoning string

	// NewClaimText is the replacement text for ActionModify. Required for
	// modify, ignored otherwise.
	NewClaimText string

	// EvidenceRequirements enumerates what to request from the supplier
	// for ActionRequestEvidence.
	EvidenceRequirements []string
}

// ActionResult reports the effect of one applied action.
type ActionResult struct {
	TaskID         string           `json:"task_id"`
	Action         Action           `json:"action"`
	ClaimText      string           `json:"claim_text"`
	FinalDirective claims.Directive `json:"final_directive,omitempty"`
	NewClaimID     string           `json:"new_claim_id,omitempty"`     // modify only
	FollowUpTaskID string           `json:"follow_up_task_id,omitempty"` // request_evidence / escalate
}

// BulkResult is one item of a bulk operation.
type BulkResult struct {
	TaskID  string        `json:"task_id"`
	Success bool          `json:"success"`
	Result  *ActionResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// TaskSummary is an open task joined with its claim and verdict context.
type TaskSummary struct {
	Task      *claims.ReviewTask    `json:"task"`
	ClaimID   string                `json:"claim_id"`
	ClaimText string                `json:"claim_text"`
	Directive claims.Directive      `json:"directive"`
	Evidence  claims.EvidenceStatus `json:"evidence_status"`
	Reasoning string                `json:"reasoning"`
}

// Service is the human override state machine. It consumes open review
// tasks and applies exactly one action per task: the task always completes,
// while the effect on the underlying verdict differs per action.
type Service struct {
	store   storage.Store
	metrics *metrics.Collector // nil disables metrics
	logger  *slog.Logger
}

// NewService creates the review service. collector may be nil.
func NewService(store storage.Store, collector *metrics.Collector) *Service {
	return &Service{
		store:   store,
		metrics: collector,
		logger:  slog.Default().With("component", "review"),
	}
}

// ListOpenTasks returns open tasks (oldest first) with claim and verdict
// context, optionally filtered by kind. limit <= 0 applies a default of 50.
func (s *Service) ListOpenTasks(ctx context.Context, kind claims.TaskKind, limit int) ([]*TaskSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	tasks, err := s.store.ListOpenTasks(ctx, kind, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*TaskSummary, 0, len(tasks))
	for _, task := range tasks {
		summary := &TaskSummary{Task: task}
		if verdict, err := s.store.GetVerdict(ctx, task.VerdictID); err == nil {
			summary.ClaimID = verdict.ClaimID
			summary.Directive = verdict.Directive
			summary.Evidence = verdict.Evidence
			summary.Reasoning = verdict.Reasoning
			if claim, err := s.store.GetClaim(ctx, verdict.ClaimID); err == nil {
				summary.ClaimText = claim.Text
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Act applies one human action to an open task.
//
// Only open tasks may be acted on: a missing, completed, or cancelled task
// yields a NotFoundError with no state change. An unknown action, or modify
// without replacement text, yields an InvalidInputError before any state
// change. Every branch completes the task with its action record and
// appends an audit entry before returning.
func (s *Service) Act(ctx context.Context, taskID string, action Action, input *ActionInput) (*ActionResult, error) {
	if input == nil {
		input = &ActionInput{}
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != claims.TaskOpen {
		return nil, claims.NewNotFoundError("task", taskID)
	}

	verdict, err := s.store.GetVerdict(ctx, task.VerdictID)
	if err != nil {
		return nil, err
	}
	claim, err := s.store.GetClaim(ctx, verdict.ClaimID)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{TaskID: taskID, Action: action, ClaimText: claim.Text}

	switch action {
	case ActionApprove:
		err = s.approve(ctx, verdict, input, result)
	case ActionReject:
		err = s.reject(ctx, verdict, input, result)
	case ActionRequestEvidence:
		err = s.requestEvidence(ctx, task, claim, input, result)
	case ActionModify:
		err = s.modify(ctx, task, verdict, claim, input, result)
	case ActionEscalate:
		err = s.escalate(ctx, task, claim, input, result)
	default:
		return nil, claims.NewInvalidInputError("unknown action %q", action)
	}
	if err != nil {
		return nil, err
	}

	actionRecord := fmt.Sprintf("Action: %s", action)
	if input.Reasoning != "" {
		actionRecord += fmt.Sprintf(". Reasoning: %s", input.Reasoning)
	}
	if err := s.store.CompleteTask(ctx, taskID, actionRecord); err != nil {
		return nil, err
	}

	s.audit(ctx, "TASK_COMPLETED", taskID, map[string]any{
		"action":     action,
		"verdict_id": verdict.ID,
	})
	if s.metrics != nil {
		s.metrics.RecordTaskTransition(string(action))
	}

	return result, nil
}

func (s *Service) approve(ctx context.Context, verdict *claims.Verdict, input *ActionInput, result *ActionResult) error {
	reasoning := strings.TrimSpace("Approved by reviewer. " + input.Reasoning)
	if err := s.store.SetVerdictOutcome(ctx, verdict.ID, claims.DirectivePass, reasoning); err != nil {
		return err
	}
	result.FinalDirective = claims.DirectivePass
	return nil
}

func (s *Service) reject(ctx context.Context, verdict *claims.Verdict, input *ActionInput, result *ActionResult) error {
	reasoning := strings.TrimSpace("Rejected by reviewer. " + input.Reasoning)
	if err := s.store.SetVerdictOutcome(ctx, verdict.ID, claims.DirectiveFail, reasoning); err != nil {
		return err
	}
	result.FinalDirective = claims.DirectiveFail
	return nil
}

// requestEvidence leaves the verdict untouched and opens a supplier
// communication task carrying the enumerated requirements.
func (s *Service) requestEvidence(ctx context.Context, task *claims.ReviewTask, claim *claims.Claim, input *ActionInput, result *ActionResult) error {
	desc := fmt.Sprintf("Evidence requested for claim %q. ", claim.Text)
	if input.Reasoning != "" {
		desc += fmt.Sprintf("Reason: %s. ", input.Reasoning)
	}
	if len(input.EvidenceRequirements) > 0 {
		desc += "Required evidence: " + strings.Join(input.EvidenceRequirements, ", ")
	}

	followUp := &claims.ReviewTask{
		ID:          claims.NewID(),
		ProductID:   task.ProductID,
		VerdictID:   task.VerdictID,
		Kind:        claims.TaskSupplierComms,
		Status:      claims.TaskOpen,
		Description: strings.TrimSpace(desc),
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertTask(ctx, followUp); err != nil {
		return err
	}

	s.audit(ctx, "TASK_CREATED", followUp.ID, map[string]any{
		"kind":       followUp.Kind,
		"verdict_id": task.VerdictID,
	})
	result.FollowUpTaskID = followUp.ID
	return nil
}

// modify supersedes the claim: a new claim with the replacement text is
// created with provenance human_modified and full confidence, and the
// original verdict's directive becomes SUPERSEDED.
func (s *Service) modify(ctx context.Context, task *claims.ReviewTask, verdict *claims.Verdict, claim *claims.Claim, input *ActionInput, result *ActionResult) error {
	if strings.TrimSpace(input.NewClaimText) == "" {
		return claims.NewInvalidInputError("new claim text required for modification")
	}

	newClaim := &claims.Claim{
		ID:         claims.NewID(),
		ProductID:  task.ProductID,
		Text:       input.NewClaimText,
		Provenance: claims.ProvenanceHuman,
		Confidence: 1.0,
		CreatedAt:  time.Now(),
	}
	if err := s.store.InsertClaim(ctx, newClaim); err != nil {
		return err
	}

	s.audit(ctx, "CLAIM_CREATED", newClaim.ID, map[string]any{
		"text":       newClaim.Text,
		"provenance": newClaim.Provenance,
		"replaces":   claim.ID,
	})

	reasoning := fmt.Sprintf("Modified by reviewer. New claim: %s.", input.NewClaimText)
	if input.Reasoning != "" {
		reasoning += " " + input.Reasoning
	}
	if err := s.store.SetVerdictOutcome(ctx, verdict.ID, claims.DirectiveSuperseded, reasoning); err != nil {
		return err
	}

	result.FinalDirective = claims.DirectiveSuperseded
	result.NewClaimID = newClaim.ID
	return nil
}

// escalate opens an escalation task referencing the same verdict.
func (s *Service) escalate(ctx context.Context, task *claims.ReviewTask, claim *claims.Claim, input *ActionInput, result *ActionResult) error {
	desc := fmt.Sprintf("Escalated from review. Original claim: %q. ", claim.Text)
	if input.Reasoning != "" {
		desc += "Escalation reason: " + input.Reasoning
	}

	followUp := &claims.ReviewTask{
		ID:          claims.NewID(),
		ProductID:   task.ProductID,
		VerdictID:   task.VerdictID,
		Kind:        claims.TaskEscalation,
		Status:      claims.TaskOpen,
		Description: strings.TrimSpace(desc),
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertTask(ctx, followUp); err != nil {
		return err
	}

	s.audit(ctx, "TASK_CREATED", followUp.ID, map[string]any{
		"kind":       followUp.Kind,
		"verdict_id": task.VerdictID,
	})
	result.FollowUpTaskID = followUp.ID
	return nil
}

// BulkApprove applies approve to each task. One invalid task never aborts
// the batch; each item reports success or failure individually.
func (s *Service) BulkApprove(ctx context.Context, taskIDs []string, reasoning string) []BulkResult {
	results := make([]BulkResult, 0, len(taskIDs))
	succeeded := 0

	for _, id := range taskIDs {
		res, err := s.Act(ctx, id, ActionApprove, &ActionInput{Reasoning: reasoning})
		if err != nil {
			results = append(results, BulkResult{TaskID: id, Success: false, Error: err.Error()})
			continue
		}
		succeeded++
		results = append(results, BulkResult{TaskID: id, Success: true, Result: res})
	}

	s.audit(ctx, "BULK_APPROVAL", "", map[string]any{
		"task_count": len(taskIDs),
		"successful": succeeded,
		"failed":     len(taskIDs) - succeeded,
	})

	return results
}

// History returns completed tasks, newest first, optionally restricted to
// one product.
func (s *Service) History(ctx context.Context, productID string, limit int) ([]*claims.ReviewTask, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.store.ListCompletedTasks(ctx, productID, limit)
}

func (s *Service) audit(ctx context.Context, action, subject string, details map[string]any) {
	entry := &claims.AuditEntry{
		Actor:     auditActor,
		Action:    action,
		SubjectID: subject,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("audit append failed", "action", action, "error", err)
	}
}
