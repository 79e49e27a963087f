package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
)

type notificationRepository interface {
	ListByCitizen(ctx context.Context, citizenID string) ([]models.Notification, error)
	ListUnreadByCitizen(ctx context.Context, citizenID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, citizenID string) (int, error)
	MarkRead(ctx context.Context, id string) (int64, error)
	MarkAllRead(ctx context.Context, citizenID string) error
}

// NotificationService exposes the citizen's read-side inbox. Writes go
// through the emitter, never through this service.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService constructs NotificationService.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// ListByCitizen returns every notification addressed to the citizen.
func (s *NotificationService) ListByCitizen(ctx context.Context, citizenID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// ListUnread returns the citizen's unread notifications.
func (s *NotificationService) ListUnread(ctx context.Context, citizenID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListUnreadByCitizen(ctx, citizenID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unread notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// CountUnread returns the unread badge count for a citizen.
func (s *NotificationService) CountUnread(ctx context.Context, citizenID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, citizenID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	return count, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	rows, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if rows == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification of a citizen as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, citizenID string) error {
	if err := s.repo.MarkAllRead(ctx, citizenID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}
