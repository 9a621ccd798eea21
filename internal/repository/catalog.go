package repository

import (
	"context"

	"suratapi/internal/model"
)

// UnitRepository is the CRUD capability for organizational units.
type UnitRepository interface {
	CRUD[model.Unit]
	FindByCode(ctx context.Context, code string) (*model.Unit, error)
}

// ClassificationRepository is the CRUD capability for archive classifications.
// Classifications are identified by their code.
type ClassificationRepository interface {
	CRUD[model.Classification]
	// Codes returns every known classification code, used for suggestions.
	Codes(ctx context.Context) ([]string, error)
}

// UserRepository is the CRUD capability for users.
type UserRepository interface {
	CRUD[model.User]
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// NotificationRepository stores the notification records the UI reads.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool, pq PageQuery) (*PageResult[model.Notification], error)
	// MarkRead flags a user's notification as read; sql.ErrNoRows if it is not theirs.
	MarkRead(ctx context.Context, userID, id string) error
}

// AuditRepository appends and reads immutable audit entries.
type AuditRepository interface {
	Append(ctx context.Context, e *model.AuditEntry) error
	ListByLetter(ctx context.Context, letterID string) ([]model.AuditEntry, error)
}
