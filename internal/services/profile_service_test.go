package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

type stubProfileStore struct {
	profiles map[int64]*models.Profile
	byName   map[string]*models.Profile
}

func (s *stubProfileStore) GetByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	if profile, ok := s.profiles[userID]; ok {
		return profile, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubProfileStore) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	if profile, ok := s.byName[username]; ok {
		return profile, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubProfileStore) Update(_ context.Context, userID int64, _ repository.UpdateProfileInput) (*models.Profile, error) {
	return s.GetByUserID(context.Background(), userID)
}

type stubFollowStore struct {
	mu      sync.Mutex
	edges   map[[2]int64]bool
	created int
}

func newStubFollowStore() *stubFollowStore {
	return &stubFollowStore{edges: make(map[[2]int64]bool)}
}

func (s *stubFollowStore) Create(_ context.Context, followerID, followeeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{followerID, followeeID}
	if s.edges[key] {
		return false, nil
	}
	s.edges[key] = true
	s.created++
	return true, nil
}

func (s *stubFollowStore) Delete(_ context.Context, followerID, followeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, [2]int64{followerID, followeeID})
	return nil
}

func (s *stubFollowStore) Exists(_ context.Context, followerID, followeeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edges[[2]int64{followerID, followeeID}], nil
}

func (s *stubFollowStore) Counts(_ context.Context, userID int64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	followers, following := 0, 0
	for key := range s.edges {
		if key[1] == userID {
			followers++
		}
		if key[0] == userID {
			following++
		}
	}
	return followers, following, nil
}

func (s *stubFollowStore) ListFollowers(_ context.Context, _ int64) ([]models.Profile, error) {
	return nil, nil
}

func (s *stubFollowStore) ListFollowing(_ context.Context, _ int64) ([]models.Profile, error) {
	return nil, nil
}

type recordingFollowNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *recordingFollowNotifier) NotifyFollow(_ context.Context, _ int64, _ *models.Profile) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *recordingFollowNotifier) notified() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

func testProfiles() *stubProfileStore {
	alice := &models.Profile{UserID: 1, Username: "alice", DisplayName: "Alice"}
	bob := &models.Profile{UserID: 2, Username: "bob", DisplayName: "Bob"}
	return &stubProfileStore{
		profiles: map[int64]*models.Profile{1: alice, 2: bob},
		byName:   map[string]*models.Profile{"alice": alice, "bob": bob},
	}
}

func TestFollowCreatesEdgeAndNotifies(t *testing.T) {
	follows := newStubFollowStore()
	notifier := &recordingFollowNotifier{}
	service := NewProfileService(testProfiles(), follows, notifier)

	if err := service.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	exists, _ := follows.Exists(context.Background(), 1, 2)
	if !exists {
		t.Fatalf("expected the follow edge to exist")
	}

	deadline := time.Now().Add(time.Second)
	for notifier.notified() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if notifier.notified() != 1 {
		t.Fatalf("expected 1 follow notification, got %d", notifier.notified())
	}
}

func TestFollowTwiceIsQuietNoOp(t *testing.T) {
	follows := newStubFollowStore()
	notifier := &recordingFollowNotifier{}
	service := NewProfileService(testProfiles(), follows, notifier)

	if err := service.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := service.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("second Follow: %v", err)
	}

	if follows.created != 1 {
		t.Fatalf("expected a single edge, got %d", follows.created)
	}
}

func TestFollowRejectsSelfAndUnknown(t *testing.T) {
	service := NewProfileService(testProfiles(), newStubFollowStore(), nil)

	if err := service.Follow(context.Background(), 1, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for self-follow, got %v", err)
	}
	if err := service.Follow(context.Background(), 1, 99); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetPublicIncludesFollowState(t *testing.T) {
	follows := newStubFollowStore()
	service := NewProfileService(testProfiles(), follows, nil)

	if err := service.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	public, err := service.GetPublic(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("GetPublic: %v", err)
	}
	if !public.ViewerFollows {
		t.Errorf("expected viewer_follows to be true")
	}
	if public.FollowerCount != 1 {
		t.Errorf("expected 1 follower, got %d", public.FollowerCount)
	}

	if _, err := service.GetPublic(context.Background(), 1, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"alice", "bob_99", "abc"}
	for _, username := range valid {
		if !ValidUsername(username) {
			t.Errorf("expected %q to be valid", username)
		}
	}

	invalid := []string{"ab", "Alice", "has space", "dash-ed", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	for _, username := range invalid {
		if ValidUsername(username) {
			t.Errorf("expected %q to be invalid", username)
		}
	}
}
