package service

import (
	"context"
	"fmt"

	"xtagram/internal/models"
	"xtagram/internal/repository"
)

// MarkReadOutcome describes what happened to a mark-read request. A non-owner
// attempt is silently skipped; the HTTP layer still redirects as if it worked.
type MarkReadOutcome int

const (
	MarkReadMarked MarkReadOutcome = iota
	MarkReadSkippedNotOwner
)

// NotificationService handles listing, read-marking and client event logging.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	limit            int
}

// NewNotificationService returns a new NotificationService. limit caps the
// notifications page (50 in the canonical deployment).
func NewNotificationService(notificationRepo repository.NotificationRepository, limit int) *NotificationService {
	if limit <= 0 {
		limit = 50
	}
	return &NotificationService{notificationRepo: notificationRepo, limit: limit}
}

// List returns the user's notifications, newest first, capped at the
// configured limit.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, s.limit)
}

// MarkRead marks the notification read if the requester owns it. Ownership
// mismatches and missing rows are skipped without error. Marking is monotonic
// and idempotent: once read, repeated calls keep it read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, requesterID uint) (MarkReadOutcome, error) {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if models.IsCode(err, "NOT_FOUND") {
			return MarkReadSkippedNotOwner, nil
		}
		return MarkReadSkippedNotOwner, err
	}
	if n.UserID != requesterID {
		return MarkReadSkippedNotOwner, nil
	}
	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		return MarkReadMarked, err
	}
	return MarkReadMarked, nil
}

// LogClientEvent stores a notification reported by the mobile shell,
// e.g. {"type": "new_post", "content": "..."}.
func (s *NotificationService) LogClientEvent(ctx context.Context, userID uint, eventType, content string) (*models.Notification, error) {
	if eventType == "" {
		eventType = "unknown"
	}
	n := &models.Notification{
		UserID:  userID,
		Title:   "Android Notification",
		Message: fmt.Sprintf("%s: %s", eventType, content),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}
