package notification

import (
	"context"
	"fmt"

	userRepo "homehub/database/repository/user"
	"homehub/models"
	"homehub/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	// PushToUser sends a push notification to one member.
	PushToUser(ctx context.Context, userID, title, body string, data map[string]string) error
	// PushToAdmins sends a push notification to every ADMIN member.
	PushToAdmins(ctx context.Context, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo userRepo.UserRepository
}

// PushToUser looks up the member's FCM token and sends a push. Members
// without a registered token are skipped silently; a missing push target
// must never fail the operation that triggered it.
func (s *DefaultNotificationService) PushToUser(ctx context.Context, userID, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		return nil
	}
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("push: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return nil
	}
	return s.send(ctx, u.FCMToken, title, body, data)
}

// PushToAdmins fans the push out to every ADMIN with a token. Individual
// send failures are logged and do not stop the fan-out.
func (s *DefaultNotificationService) PushToAdmins(ctx context.Context, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		return nil
	}
	users, err := s.Repo.GetAll()
	if err != nil {
		return fmt.Errorf("push: failed to list users: %w", err)
	}
	for _, u := range users {
		if u.Role != models.RoleAdmin || u.FCMToken == "" {
			continue
		}
		if err := s.send(ctx, u.FCMToken, title, body, data); err != nil {
			utils.GetLogger().Warn("push to admin failed",
				zap.String("userId", u.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultNotificationService) send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("push: failed to send FCM message: %w", err)
	}
	return nil
}
