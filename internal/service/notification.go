package service

import (
	"context"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// NotificationService exposes a user's notification inbox.
type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*ListResult[model.Notification], error)
	MarkRead(ctx context.Context, userID, id string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*ListResult[model.Notification], error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	res, err := s.repo.ListForUser(ctx, userID, unreadOnly, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Notification]{Items: res.Items, Total: res.Total}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	return translate("notification", id, s.repo.MarkRead(ctx, userID, id))
}
