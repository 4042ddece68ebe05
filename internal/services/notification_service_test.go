package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/repository"
)

type stubNotificationStore struct {
	created   []repository.CreateNotificationInput
	fail      error
	nextID    int64
	markReads int
}

func (s *stubNotificationStore) Create(_ context.Context, input repository.CreateNotificationInput) (*models.Notification, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.created = append(s.created, input)
	s.nextID++
	return &models.Notification{
		ID:          s.nextID,
		UserID:      input.UserID,
		Kind:        input.Kind,
		ActorID:     input.ActorID,
		ActorName:   input.ActorName,
		ActorAvatar: input.ActorAvatar,
		Body:        input.Body,
	}, nil
}

func (s *stubNotificationStore) ListForUser(_ context.Context, _ int64, _, _ int) ([]models.Notification, int, error) {
	return nil, 0, nil
}

// MarkRead mirrors the store contract: an owned row reports success no
// matter how often it is re-read; false means missing or foreign.
func (s *stubNotificationStore) MarkRead(_ context.Context, notificationID, _ int64) (bool, error) {
	if notificationID != 1 {
		return false, nil
	}
	s.markReads++
	return true, nil
}

func (s *stubNotificationStore) CountUnread(_ context.Context, _ int64) (int, error) {
	return len(s.created), nil
}

type recordingPusher struct {
	pushed []*models.Notification
}

func (p *recordingPusher) PushNotification(_ int64, notification *models.Notification) {
	p.pushed = append(p.pushed, notification)
}

func TestNotifyNewMessageStoresAndPushes(t *testing.T) {
	store := &stubNotificationStore{}
	pusher := &recordingPusher{}
	service := NewNotificationService(store, pusher)

	avatar := "https://cdn.example/alice.png"
	service.NotifyNewMessage(context.Background(), NewMessageNotification{
		ReceiverID:   2,
		SenderID:     1,
		SenderName:   "Alice",
		SenderAvatar: &avatar,
		Preview:      "hey, up for a match?",
	})

	if len(store.created) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(store.created))
	}
	stored := store.created[0]
	if stored.Kind != models.NotificationKindMessage {
		t.Errorf("expected kind %q, got %q", models.NotificationKindMessage, stored.Kind)
	}
	if stored.UserID != 2 || stored.ActorID != 1 {
		t.Errorf("unexpected addressing: user %d actor %d", stored.UserID, stored.ActorID)
	}
	if len(pusher.pushed) != 1 {
		t.Fatalf("expected 1 pushed notification, got %d", len(pusher.pushed))
	}
}

func TestNotifyFollowBuildsBodyFromUsername(t *testing.T) {
	store := &stubNotificationStore{}
	service := NewNotificationService(store, nil)

	service.NotifyFollow(context.Background(), 2, &models.Profile{
		UserID:      1,
		Username:    "alice",
		DisplayName: "Alice",
	})

	if len(store.created) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(store.created))
	}
	if got := store.created[0].Body; got != "alice started following you" {
		t.Errorf("unexpected body %q", got)
	}
	if store.created[0].Kind != models.NotificationKindFollow {
		t.Errorf("unexpected kind %q", store.created[0].Kind)
	}
}

func TestNotifyDropsOnStoreFailure(t *testing.T) {
	store := &stubNotificationStore{fail: errors.New("db down")}
	pusher := &recordingPusher{}
	service := NewNotificationService(store, pusher)

	service.NotifyNewMessage(context.Background(), NewMessageNotification{
		ReceiverID: 2,
		SenderID:   1,
		Preview:    "lost",
	})

	if len(pusher.pushed) != 0 {
		t.Fatalf("expected no push after store failure, got %d", len(pusher.pushed))
	}
}

func TestNotificationMarkRead(t *testing.T) {
	service := NewNotificationService(&stubNotificationStore{}, nil)

	if err := service.MarkRead(context.Background(), 2, 1); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := service.MarkRead(context.Background(), 2, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign notification, got %v", err)
	}
	if err := service.MarkRead(context.Background(), 0, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNotificationMarkReadIsIdempotent(t *testing.T) {
	store := &stubNotificationStore{}
	service := NewNotificationService(store, nil)

	for i := 0; i < 3; i++ {
		if err := service.MarkRead(context.Background(), 2, 1); err != nil {
			t.Fatalf("MarkRead attempt %d: %v", i+1, err)
		}
	}
	if store.markReads != 3 {
		t.Fatalf("expected 3 store updates, got %d", store.markReads)
	}
}
