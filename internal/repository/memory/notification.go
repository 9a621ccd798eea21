package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// NotificationStore is an in-memory repository.NotificationRepository.
type NotificationStore struct {
	mu    sync.Mutex
	items []model.Notification
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

var _ repository.NotificationRepository = (*NotificationStore)(nil)

func (s *NotificationStore) Create(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == n.ID {
			return nil
		}
	}
	s.items = append(s.items, *n)
	return nil
}

func (s *NotificationStore) ListForUser(_ context.Context, userID string, unreadOnly bool, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]model.Notification, 0)
	for _, n := range s.items {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			matched = append(matched, n)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	items := append(make([]model.Notification, 0), page(matched, pq)...)
	return &repository.PageResult[model.Notification]{Items: items, Total: len(matched)}, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].UserID == userID {
			s.items[i].IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

// AuditStore is an in-memory repository.AuditRepository.
type AuditStore struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	seen    map[string]bool
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore() *AuditStore {
	return &AuditStore{seen: make(map[string]bool)}
}

var _ repository.AuditRepository = (*AuditStore)(nil)

func (s *AuditStore) Append(_ context.Context, e *model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[e.ID] {
		return nil
	}
	s.seen[e.ID] = true
	s.entries = append(s.entries, *e)
	return nil
}

func (s *AuditStore) ListByLetter(_ context.Context, letterID string) ([]model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditEntry, 0)
	for _, e := range s.entries {
		if e.LetterID == letterID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
