package workflow

import (
	"fmt"
	"sort"
	"strings"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
)

// Audit actions emitted by the approval workflow.
const (
	ActionChainConfigured = "chain.configured"
	ActionSubmitted       = "letter.submitted"
	ActionStepApproved    = "step.approved"
	ActionStepRejected    = "step.rejected"
	ActionApproved        = "letter.approved"
	ActionSigned          = "letter.signed"
	ActionResubmitted     = "letter.resubmitted"
)

// Edits are the content changes applied on resubmission. Nil fields are kept.
// A non-nil Approvers redefines the chain; otherwise the existing chain is re-armed.
type Edits struct {
	Subject        *string
	Body           *string
	Classification *model.ClassificationRef
	Approvers      []string
}

// ApprovalWorkflow drives an outgoing letter or memo through
// Draft → PendingApproval → (Approved | Revision), Approved → Sent,
// and Revision → PendingApproval on resubmission.
type ApprovalWorkflow struct {
	deps
	history *RevisionHistory
}

// NewApprovalWorkflow creates a new ApprovalWorkflow.
func NewApprovalWorkflow(opts ...Option) *ApprovalWorkflow {
	return &ApprovalWorkflow{deps: newDeps(opts), history: NewRevisionHistory(opts...)}
}

// ConfigureChain replaces the approval chain of a draft with one step per approver, in order.
func (w *ApprovalWorkflow) ConfigureChain(l *model.Letter, approvers []string, actor string) (Outcome, error) {
	if err := requireApproval(l); err != nil {
		return Outcome{}, err
	}
	if l.Status != model.StatusDraft {
		return Outcome{}, apperror.InvalidTransition("approval chain can only be configured on a Draft letter, letter is %s", l.Status)
	}
	chain, err := w.buildChain(approvers)
	if err != nil {
		return Outcome{}, err
	}
	l.ApprovalChain = chain

	out := Outcome{Transition: "configure"}
	out.audit(l.ID, actor, ActionChainConfigured, fmt.Sprintf("%d approvers: %s", len(approvers), strings.Join(approvers, ", ")))
	return out, nil
}

// Submit sends a draft to its first approver.
func (w *ApprovalWorkflow) Submit(l *model.Letter, actor string) (Outcome, error) {
	if err := requireApproval(l); err != nil {
		return Outcome{}, err
	}
	if l.Status != model.StatusDraft {
		return Outcome{}, apperror.InvalidTransition("only a Draft letter can be submitted, letter is %s", l.Status)
	}
	if err := checkArmed(l.ApprovalChain); err != nil {
		return Outcome{}, err
	}
	out := Outcome{Transition: "submit"}
	w.enterPending(l, actor, ActionSubmitted, "", &out)
	return out, nil
}

// Decide approves or rejects the active step of a pending letter.
func (w *ApprovalWorkflow) Decide(l *model.Letter, stepID string, d model.Decision, notes, actor string) (Outcome, error) {
	if err := requireApproval(l); err != nil {
		return Outcome{}, err
	}
	if !d.Valid() {
		return Outcome{}, apperror.Validation("decision", "must be %q or %q", model.DecisionApprove, model.DecisionReject)
	}
	idx := stepIndex(l.ApprovalChain, stepID)
	if idx < 0 {
		return Outcome{}, apperror.NotFound("approval step", stepID)
	}
	if l.Status != model.StatusPendingApproval {
		return Outcome{}, apperror.InvalidTransition("letter is %s, not %s", l.Status, model.StatusPendingApproval)
	}
	if active := activeIndex(l.ApprovalChain); active != idx {
		return Outcome{}, apperror.InvalidTransition("step %d is not the active approval step", l.ApprovalChain[idx].Order)
	}
	step := &l.ApprovalChain[idx]
	if actor != "" && actor != step.Approver {
		return Outcome{}, apperror.Forbidden("step %d is assigned to %s", step.Order, step.Approver)
	}

	now := w.now()
	step.DecidedAt = &now
	step.Notes = notes

	var out Outcome
	if d == model.DecisionReject {
		step.Status = model.StepRejected
		l.Status = model.StatusRevision
		out.Transition = "reject"
		out.notify(l.CreatedBy, l.ID, fmt.Sprintf("Surat %q ditolak pada tahap %d dan perlu direvisi: %s", l.Subject, step.Order, notes))
		out.audit(l.ID, actor, ActionStepRejected, fmt.Sprintf("step %d: %s", step.Order, notes))
		return out, nil
	}

	step.Status = model.StepApproved
	out.audit(l.ID, actor, ActionStepApproved, fmt.Sprintf("step %d", step.Order))
	if next := orderIndex(l.ApprovalChain, step.Order+1); next >= 0 {
		out.Transition = "approve"
		out.notify(l.ApprovalChain[next].Approver, l.ID, fmt.Sprintf("Surat %q menunggu persetujuan Anda", l.Subject))
		return out, nil
	}
	l.Status = model.StatusApproved
	out.Transition = "approve_final"
	out.notify(l.CreatedBy, l.ID, fmt.Sprintf("Surat %q telah disetujui sepenuhnya", l.Subject))
	out.audit(l.ID, actor, ActionApproved, "")
	return out, nil
}

// Sign marks an approved letter as signed, which sends it.
func (w *ApprovalWorkflow) Sign(l *model.Letter, signatureRef, actor string) (Outcome, error) {
	if err := requireApproval(l); err != nil {
		return Outcome{}, err
	}
	if l.Status != model.StatusApproved {
		return Outcome{}, apperror.InvalidTransition("only an Approved letter can be signed, letter is %s", l.Status)
	}
	if strings.TrimSpace(signatureRef) == "" {
		return Outcome{}, apperror.Validation("signature_ref", "is required")
	}
	l.Signature = &model.Signature{Ref: signatureRef, SignedBy: actor, SignedAt: w.now()}
	l.Status = model.StatusSent

	out := Outcome{Transition: "sign"}
	out.notify(l.CreatedBy, l.ID, fmt.Sprintf("Surat %q telah ditandatangani dan dikirim", l.Subject))
	out.audit(l.ID, actor, ActionSigned, signatureRef)
	return out, nil
}

// Resubmit snapshots the rejected content, applies edits, re-arms the chain
// with every step Pending and sends the letter to its first approver again.
func (w *ApprovalWorkflow) Resubmit(l *model.Letter, e Edits, actor string) (Outcome, error) {
	if err := requireApproval(l); err != nil {
		return Outcome{}, err
	}
	if l.Status != model.StatusRevision {
		return Outcome{}, apperror.InvalidTransition("only a letter in %s can be resubmitted, letter is %s", model.StatusRevision, l.Status)
	}
	if e.Subject != nil && strings.TrimSpace(*e.Subject) == "" {
		return Outcome{}, apperror.Validation("subject", "must not be empty")
	}
	if e.Classification != nil && e.Classification.Code == "" {
		return Outcome{}, apperror.Validation("classification_code", "must not be empty")
	}
	chain := l.ApprovalChain
	if e.Approvers != nil {
		var err error
		if chain, err = w.buildChain(e.Approvers); err != nil {
			return Outcome{}, err
		}
	}
	if len(chain) == 0 {
		return Outcome{}, apperror.Validation("approval_chain", "must not be empty")
	}
	if err := CheckOrders(chain); err != nil {
		return Outcome{}, err
	}

	if err := w.history.Snapshot(l); err != nil {
		return Outcome{}, err
	}
	if e.Subject != nil {
		l.Subject = *e.Subject
	}
	if e.Body != nil {
		l.Body = *e.Body
	}
	if e.Classification != nil {
		l.Classification = *e.Classification
	}
	if e.Approvers == nil {
		chain = rearm(chain)
	}
	l.ApprovalChain = chain

	out := Outcome{Transition: "resubmit"}
	w.enterPending(l, actor, ActionResubmitted, fmt.Sprintf("version %d", l.Version), &out)
	return out, nil
}

func (w *ApprovalWorkflow) enterPending(l *model.Letter, actor, action, detail string, out *Outcome) {
	l.Status = model.StatusPendingApproval
	first := l.ApprovalChain[orderIndex(l.ApprovalChain, 1)]
	out.notify(first.Approver, l.ID, fmt.Sprintf("Surat %q menunggu persetujuan Anda", l.Subject))
	out.audit(l.ID, actor, action, detail)
}

func (w *ApprovalWorkflow) buildChain(approvers []string) ([]model.ApprovalStep, error) {
	if len(approvers) == 0 {
		return nil, apperror.Validation("approvers", "approval chain must not be empty")
	}
	seen := make(map[string]bool, len(approvers))
	chain := make([]model.ApprovalStep, 0, len(approvers))
	for i, a := range approvers {
		a = strings.TrimSpace(a)
		if a == "" {
			return nil, apperror.Validation("approvers", "approver %d is empty", i+1)
		}
		if seen[a] {
			return nil, apperror.Validation("approvers", "approver %s appears more than once", a)
		}
		seen[a] = true
		chain = append(chain, model.ApprovalStep{
			ID:       w.newID(),
			Approver: a,
			Order:    i + 1,
			Status:   model.StepPending,
		})
	}
	return chain, nil
}

func requireApproval(l *model.Letter) error {
	if l == nil {
		return apperror.Validation("letter", "is required")
	}
	if !l.HasApprovalChain() {
		return apperror.Validation("kind", "%s letters do not go through approval", l.Kind)
	}
	return nil
}

// checkArmed verifies the chain is non-empty, orders are exactly 1..N and every step is Pending.
func checkArmed(chain []model.ApprovalStep) error {
	if len(chain) == 0 {
		return apperror.Validation("approval_chain", "must not be empty")
	}
	if err := CheckOrders(chain); err != nil {
		return err
	}
	for _, s := range chain {
		if s.Status != model.StepPending {
			return apperror.InvalidTransition("step %d is %s, every step must be Pending to submit", s.Order, s.Status)
		}
	}
	return nil
}

// CheckOrders verifies that the step orders form the contiguous set 1..N.
func CheckOrders(chain []model.ApprovalStep) error {
	orders := make([]int, len(chain))
	for i, s := range chain {
		orders[i] = s.Order
	}
	sort.Ints(orders)
	for i, o := range orders {
		if o != i+1 {
			return apperror.Validation("approval_chain", "step orders must be 1..%d without gaps or duplicates", len(chain))
		}
	}
	return nil
}

// ActiveStep returns the step awaiting a decision, or nil when none is.
func ActiveStep(l *model.Letter) *model.ApprovalStep {
	if l.Status != model.StatusPendingApproval {
		return nil
	}
	if i := activeIndex(l.ApprovalChain); i >= 0 {
		return &l.ApprovalChain[i]
	}
	return nil
}

// activeIndex finds the lowest-order Pending step, provided every lower step is Approved.
func activeIndex(chain []model.ApprovalStep) int {
	for order := 1; order <= len(chain); order++ {
		i := orderIndex(chain, order)
		if i < 0 {
			return -1
		}
		switch chain[i].Status {
		case model.StepApproved:
			continue
		case model.StepPending:
			return i
		default:
			return -1
		}
	}
	return -1
}

func orderIndex(chain []model.ApprovalStep, order int) int {
	for i := range chain {
		if chain[i].Order == order {
			return i
		}
	}
	return -1
}

func stepIndex(chain []model.ApprovalStep, id string) int {
	for i := range chain {
		if chain[i].ID == id {
			return i
		}
	}
	return -1
}

func rearm(chain []model.ApprovalStep) []model.ApprovalStep {
	out := make([]model.ApprovalStep, len(chain))
	for i, s := range chain {
		out[i] = model.ApprovalStep{ID: s.ID, Approver: s.Approver, Order: s.Order, Status: model.StepPending}
	}
	return out
}
