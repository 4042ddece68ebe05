package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

type notificationStore interface {
	Create(ctx context.Context, input repository.CreateNotificationInput) (*models.Notification, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, notificationID, userID int64) (bool, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

// notificationPusher delivers a notification to the user's live
// connections, if any.
type notificationPusher interface {
	PushNotification(userID int64, notification *models.Notification)
}

// NotificationService persists and pushes user notifications. The
// Notify* entry points are fire-and-forget: every failure is logged and
// dropped so the triggering operation is never affected.
type NotificationService struct {
	store  notificationStore
	pusher notificationPusher
}

func NewNotificationService(store notificationStore, pusher notificationPusher) *NotificationService {
	return &NotificationService{store: store, pusher: pusher}
}

// NotifyNewMessage records an unread-message notice for the receiver.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, notification NewMessageNotification) {
	s.deliver(ctx, repository.CreateNotificationInput{
		UserID:      notification.ReceiverID,
		Kind:        models.NotificationKindMessage,
		ActorID:     notification.SenderID,
		ActorName:   notification.SenderName,
		ActorAvatar: notification.SenderAvatar,
		Body:        notification.Preview,
	})
}

// NotifyFollow records a new-follower notice.
func (s *NotificationService) NotifyFollow(ctx context.Context, followeeID int64, follower *models.Profile) {
	s.deliver(ctx, repository.CreateNotificationInput{
		UserID:      followeeID,
		Kind:        models.NotificationKindFollow,
		ActorID:     follower.UserID,
		ActorName:   follower.DisplayName,
		ActorAvatar: follower.AvatarURL,
		Body:        follower.Username + " started following you",
	})
}

func (s *NotificationService) deliver(ctx context.Context, input repository.CreateNotificationInput) {
	if input.UserID <= 0 || input.ActorID <= 0 {
		log.Printf("notification dropped: missing user or actor (%+v)", input)
		return
	}
	input.Body = strings.TrimSpace(input.Body)

	notification, err := s.store.Create(ctx, input)
	if err != nil {
		log.Printf("notification store for user %d: %v", input.UserID, err)
		return
	}
	if s.pusher != nil {
		s.pusher.PushNotification(notification.UserID, notification)
	}
}

func (s *NotificationService) List(ctx context.Context, userID int64, page, limit int) ([]models.Notification, int, error) {
	if userID <= 0 || page <= 0 || limit <= 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.store.ListForUser(ctx, userID, limit, (page-1)*limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if userID <= 0 || notificationID <= 0 {
		return ErrInvalidInput
	}
	ok, err := s.store.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, ErrInvalidInput
	}
	return s.store.CountUnread(ctx, userID)
}
