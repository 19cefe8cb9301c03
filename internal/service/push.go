package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"ugc-marketplace-backend/internal/logger"
)

// pushSender is the slice of the FCM client the push service needs
type pushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type pushService struct {
	client pushSender
}

// NewPushService connects to Firebase Cloud Messaging. Devices subscribe to the topic
// user-{id}; with no credentials file the service is a no-op.
func NewPushService(ctx context.Context, credentialsFile, projectID string) (PushService, error) {
	if credentialsFile == "" {
		logger.Info("Push notifications disabled, no Firebase credentials configured")
		return &pushService{}, nil
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	return &pushService{client: client}, nil
}

func userTopic(userID int32) string {
	return fmt.Sprintf("user-%d", userID)
}

func (s *pushService) SendToUser(ctx context.Context, userID int32, title, body string, data map[string]string) error {
	if s.client == nil {
		return nil
	}
	msg := &messaging.Message{
		Topic:        userTopic(userID),
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	}
	logger.ExternalServiceCall("fcm", "send", "userID", userID, "title", title)
	id, err := s.client.Send(ctx, msg)
	logger.ExternalServiceResult("fcm", "send", err, "messageID", id)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	return nil
}
