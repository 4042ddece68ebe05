package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

type profileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, userID int64, input repository.UpdateProfileInput) (*models.Profile, error)
}

type followStore interface {
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	Delete(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	Counts(ctx context.Context, userID int64) (int, int, error)
	ListFollowers(ctx context.Context, userID int64) ([]models.Profile, error)
	ListFollowing(ctx context.Context, userID int64) ([]models.Profile, error)
}

type followNotifier interface {
	NotifyFollow(ctx context.Context, followeeID int64, follower *models.Profile)
}

// ProfileService serves user profiles and the follow graph.
type ProfileService struct {
	profiles profileStore
	follows  followStore
	notifier followNotifier
}

func NewProfileService(profiles profileStore, follows followStore, notifier followNotifier) *ProfileService {
	return &ProfileService{profiles: profiles, follows: follows, notifier: notifier}
}

// ValidUsername reports whether a username is acceptable: lowercase
// letters, digits and underscores, 3 to 30 characters.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func (s *ProfileService) GetOwn(ctx context.Context, userID int64) (*models.Profile, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

type UpdateProfileInput struct {
	DisplayName    *string
	Bio            *string
	FavoriteGenres *[]string
}

func (s *ProfileService) Update(ctx context.Context, userID int64, input UpdateProfileInput) (*models.Profile, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	if input.DisplayName != nil {
		trimmed := strings.TrimSpace(*input.DisplayName)
		if trimmed == "" || len(trimmed) > 80 {
			return nil, ErrInvalidInput
		}
		input.DisplayName = &trimmed
	}
	if input.Bio != nil && len(*input.Bio) > 500 {
		return nil, ErrInvalidInput
	}

	profile, err := s.profiles.Update(ctx, userID, repository.UpdateProfileInput{
		DisplayName:    input.DisplayName,
		Bio:            input.Bio,
		FavoriteGenres: input.FavoriteGenres,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetPublic returns another user's profile with follow counts and whether
// the viewer already follows them.
func (s *ProfileService) GetPublic(ctx context.Context, viewerID int64, username string) (*models.PublicProfile, error) {
	profile, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	followers, following, err := s.follows.Counts(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}

	viewerFollows := false
	if viewerID > 0 && viewerID != profile.UserID {
		viewerFollows, err = s.follows.Exists(ctx, viewerID, profile.UserID)
		if err != nil {
			return nil, err
		}
	}

	return &models.PublicProfile{
		Profile:        *profile,
		FollowerCount:  followers,
		FollowingCount: following,
		ViewerFollows:  viewerFollows,
	}, nil
}

// Follow adds the edge follower -> followee. Following yourself is
// rejected; following twice is a quiet no-op.
func (s *ProfileService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID <= 0 || followeeID <= 0 {
		return ErrInvalidInput
	}
	if followerID == followeeID {
		return ErrInvalidInput
	}

	if _, err := s.profiles.GetByUserID(ctx, followeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	created, err := s.follows.Create(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	if s.notifier != nil {
		follower, err := s.profiles.GetByUserID(ctx, followerID)
		if err != nil {
			log.Printf("follow notification lookup for user %d: %v", followerID, err)
			return nil
		}
		go s.notifier.NotifyFollow(context.Background(), followeeID, follower)
	}
	return nil
}

func (s *ProfileService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if followerID <= 0 || followeeID <= 0 || followerID == followeeID {
		return ErrInvalidInput
	}
	return s.follows.Delete(ctx, followerID, followeeID)
}

func (s *ProfileService) Followers(ctx context.Context, userID int64) ([]models.Profile, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.follows.ListFollowers(ctx, userID)
}

func (s *ProfileService) Following(ctx context.Context, userID int64) ([]models.Profile, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.follows.ListFollowing(ctx, userID)
}
