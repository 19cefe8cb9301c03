package service

import (
	"context"
	"fmt"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type notificationService struct {
	noteRepo  repository.NotificationRepository
	publisher Publisher
}

func NewNotificationService(noteRepo repository.NotificationRepository, publisher Publisher) NotificationService {
	return &notificationService{noteRepo: noteRepo, publisher: publisher}
}

// Notify persists a notification and pushes it to the user's open websocket connections.
func (s *notificationService) Notify(ctx context.Context, userID int32, companyID *int32, title, message string, attrs map[string]string) (*domain.Notification, error) {
	if attrs == nil {
		attrs = map[string]string{}
	}
	note := &domain.Notification{
		UserID:     userID,
		CompanyID:  companyID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	if s.publisher != nil {
		delivered := s.publisher.Publish(userID, domain.Envelope{Type: domain.EventNotification, Data: note})
		logger.Debug("Notification published", "userID", userID, "notificationID", note.ID, "connections", delivered)
	}
	return note, nil
}

func (s *notificationService) List(ctx context.Context, userID, page, pageSize int32) ([]domain.Notification, int32, error) {
	page, pageSize = clampPage(page, pageSize)
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	if err := s.noteRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return notFound(err, "notification")
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	return s.noteRepo.UnreadCount(ctx, userID)
}

// messenger fans a user-facing event out to the in-app feed and push. Failures are logged, never returned.
type messenger struct {
	notes NotificationService
	push  PushService
}

func newMessenger(notes NotificationService, push PushService) *messenger {
	return &messenger{notes: notes, push: push}
}

func (m *messenger) send(ctx context.Context, userID int32, companyID *int32, title, body string, attrs map[string]string) {
	if m.notes != nil {
		if _, err := m.notes.Notify(ctx, userID, companyID, title, body, attrs); err != nil {
			logger.Warn("Failed to store notification", "userID", userID, "error", err)
		}
	}
	if m.push != nil {
		if err := m.push.SendToUser(ctx, userID, title, body, attrs); err != nil {
			logger.Warn("Failed to send push", "userID", userID, "error", err)
		}
	}
}
