package notify

import (
	"context"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// StoreSink writes notices to the notification table and audit records to the audit log.
// Both repositories ignore an event ID they have already stored.
type StoreSink struct {
	notifications repository.NotificationRepository
	audit         repository.AuditRepository
}

// NewStoreSink creates a new StoreSink.
func NewStoreSink(n repository.NotificationRepository, a repository.AuditRepository) *StoreSink {
	return &StoreSink{notifications: n, audit: a}
}

// Name identifies the sink in logs and metrics.
func (s *StoreSink) Name() string { return "store" }

// Deliver stores a notice as a notification and an audit record as an audit entry.
func (s *StoreSink) Deliver(ctx context.Context, e Event) error {
	switch {
	case e.Notice != nil:
		return s.notifications.Create(ctx, &model.Notification{
			ID:              e.ID,
			UserID:          e.Notice.UserID,
			RelatedLetterID: e.Notice.LetterID,
			Message:         e.Notice.Message,
			Timestamp:       e.At,
		})
	case e.Audit != nil:
		return s.audit.Append(ctx, &model.AuditEntry{
			ID:        e.ID,
			LetterID:  e.Audit.LetterID,
			Actor:     e.Audit.Actor,
			Action:    e.Audit.Action,
			Detail:    e.Audit.Detail,
			CreatedAt: e.At,
		})
	}
	return nil
}
