package workflow

import (
	"fmt"
	"strings"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
)

const (
	ActionDispositionCreated = "disposition.created"
	ActionDispositionStatus  = "disposition.status_changed"
)

// DispositionRouter routes incoming letters to recipients and tracks each
// instruction's progress. A disposition's status history only ever grows and
// always starts with (InProgress, author).
type DispositionRouter struct {
	deps
}

// NewDispositionRouter creates a new DispositionRouter.
func NewDispositionRouter(opts ...Option) *DispositionRouter {
	return &DispositionRouter{deps: newDeps(opts)}
}

// Add attaches a new disposition from author to target. Any number of
// dispositions per letter and per target is allowed. An empty urgency means Biasa.
func (r *DispositionRouter) Add(l *model.Letter, author, target, instruction string, urgency model.Urgency) (model.Disposition, Outcome, error) {
	if err := requireDispositions(l); err != nil {
		return model.Disposition{}, Outcome{}, err
	}
	if strings.TrimSpace(author) == "" {
		return model.Disposition{}, Outcome{}, apperror.Validation("author", "is required")
	}
	if strings.TrimSpace(target) == "" {
		return model.Disposition{}, Outcome{}, apperror.Validation("target", "is required")
	}
	if strings.TrimSpace(instruction) == "" {
		return model.Disposition{}, Outcome{}, apperror.Validation("instruction", "is required")
	}
	if urgency == "" {
		urgency = model.UrgencyNormal
	}
	if !urgency.Valid() {
		return model.Disposition{}, Outcome{}, apperror.Validation("urgency", "unknown urgency %q", urgency)
	}

	now := r.now()
	d := model.Disposition{
		ID:          r.newID(),
		Author:      author,
		Target:      target,
		CreatedAt:   now,
		Instruction: instruction,
		Urgency:     urgency,
		Status:      model.DispositionInProgress,
		StatusHistory: []model.StatusEntry{
			{Status: model.DispositionInProgress, At: now, Actor: author},
		},
	}
	l.Dispositions = append(l.Dispositions, d)

	out := Outcome{Transition: "dispose"}
	out.notify(target, l.ID, fmt.Sprintf("Disposisi baru (%s) untuk surat %q: %s", urgency, l.Subject, instruction))
	out.audit(l.ID, author, ActionDispositionCreated, fmt.Sprintf("%s -> %s", d.ID, target))
	return d, out, nil
}

// UpdateStatus appends a status entry to a disposition. The author is notified
// only when the status actually changes.
func (r *DispositionRouter) UpdateStatus(l *model.Letter, dispositionID string, status model.DispositionStatus, actor string) (Outcome, error) {
	if err := requireDispositions(l); err != nil {
		return Outcome{}, err
	}
	if !status.Valid() {
		return Outcome{}, apperror.Validation("status", "unknown disposition status %q", status)
	}
	if strings.TrimSpace(actor) == "" {
		return Outcome{}, apperror.Validation("actor", "is required")
	}
	idx := -1
	for i := range l.Dispositions {
		if l.Dispositions[i].ID == dispositionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Outcome{}, apperror.NotFound("disposition", dispositionID)
	}

	d := &l.Dispositions[idx]
	prev := d.Status
	d.StatusHistory = append(d.StatusHistory, model.StatusEntry{Status: status, At: r.now(), Actor: actor})
	d.Status = status

	out := Outcome{Transition: "disposition_status"}
	if prev != status {
		out.notify(d.Author, l.ID, fmt.Sprintf("Disposisi surat %q kini %s (oleh %s)", l.Subject, status, actor))
	}
	out.audit(l.ID, actor, ActionDispositionStatus, fmt.Sprintf("%s: %s -> %s", d.ID, prev, status))
	return out, nil
}

func requireDispositions(l *model.Letter) error {
	if l == nil {
		return apperror.Validation("letter", "is required")
	}
	if !l.HasDispositions() {
		return apperror.Validation("kind", "%s letters cannot be routed with dispositions", l.Kind)
	}
	return nil
}
