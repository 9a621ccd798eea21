package workflow

import (
	"suratapi/internal/apperror"
	"suratapi/internal/model"
)

// RevisionHistory keeps the superseded content of letters that went through a
// revision cycle. len(History) == Version-1 holds before and after Snapshot.
type RevisionHistory struct {
	deps
}

// NewRevisionHistory creates a new RevisionHistory.
func NewRevisionHistory(opts ...Option) *RevisionHistory {
	return &RevisionHistory{deps: newDeps(opts)}
}

// Snapshot records the current content of l tagged with its version and bumps
// the version. Call it once per resubmission, before edits are applied.
func (r *RevisionHistory) Snapshot(l *model.Letter) error {
	if !l.HasApprovalChain() {
		return apperror.Validation("kind", "%s letters have no revision history", l.Kind)
	}
	if len(l.History) != l.Version-1 {
		return apperror.InvalidTransition("letter %s has %d snapshots at version %d", l.ID, len(l.History), l.Version)
	}
	l.History = append(l.History, model.Snapshot{
		Version:        l.Version,
		Subject:        l.Subject,
		Classification: l.Classification,
		Body:           l.Body,
		RecordedAt:     r.now(),
	})
	l.Version++
	return nil
}
