package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabinet-backend/internal/event"
	"cabinet-backend/internal/mail"
	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

// NotificationStore is implemented by repository.NotificationRepository.
type NotificationStore interface {
	CreateBroadcast(ctx context.Context, n model.Notification, fanout []model.UserNotification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]model.UserNotification, error)
	MarkRead(ctx context.Context, userNotificationID string, userID string) error
}

type recipientDirectory interface {
	ListActive(ctx context.Context) ([]model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
}

// NotificationService fans broadcasts out to active users, in-app and by
// email.
type NotificationService struct {
	notifications NotificationStore
	users         recipientDirectory
	bus           event.Bus
	now           func() time.Time
}

func NewNotificationService(notifications NotificationStore, users recipientDirectory, bus event.Bus) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, bus: bus, now: time.Now}
}

// Broadcast stores the notification with a fan-out row per recipient and
// queues the email copies. When UserIDs is set the fan-out is limited to
// those accounts; otherwise every active user receives it. Inactive accounts
// and unknown ids are skipped either way.
func (s *NotificationService) Broadcast(ctx context.Context, req model.CreateNotificationRequest) (model.Notification, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Message) == "" {
		return model.Notification{}, apierror.BadRequest("title and message are required", "")
	}

	recipients, err := s.resolveRecipients(ctx, req.UserIDs)
	if err != nil {
		return model.Notification{}, err
	}

	notification := model.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   req.Message,
		Link:      strings.TrimSpace(req.Link),
		CreatedAt: s.now().UTC(),
	}

	fanout := make([]model.UserNotification, 0, len(recipients))
	for _, user := range recipients {
		fanout = append(fanout, model.UserNotification{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Read:   false,
		})
	}

	if err := s.notifications.CreateBroadcast(ctx, notification, fanout); err != nil {
		return model.Notification{}, err
	}

	if s.bus != nil {
		for _, user := range recipients {
			s.bus.Publish(event.Event{
				ID:        uuid.NewString(),
				Type:      event.TypeEmailRequested,
				Timestamp: s.now().UTC().Format(time.RFC3339),
				Payload: event.EmailPayload{
					To:       user.Email,
					Subject:  notification.Title,
					HTMLBody: mail.BroadcastBody(user.FirstName, notification.Title, notification.Message, notification.Link),
				},
			})
		}
	}

	return notification, nil
}

func (s *NotificationService) resolveRecipients(ctx context.Context, userIDs []string) ([]model.User, error) {
	if len(userIDs) == 0 {
		return s.users.ListActive(ctx)
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	active := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.Status == model.UserActive {
			active = append(active, u)
		}
	}
	return active, nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]model.UserNotification, error) {
	return s.notifications.ListForUser(ctx, userID, false)
}

func (s *NotificationService) ListUnreadForUser(ctx context.Context, userID string) ([]model.UserNotification, error) {
	return s.notifications.ListForUser(ctx, userID, true)
}

func (s *NotificationService) MarkRead(ctx context.Context, userNotificationID string, userID string) error {
	return s.notifications.MarkRead(ctx, userNotificationID, userID)
}
