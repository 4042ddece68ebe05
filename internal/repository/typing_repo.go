package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// typingKeyTTL garbage-collects signals from writers that died without
// cleanup. It is deliberately much longer than the reader-side staleness
// window, which stays the authoritative check.
const typingKeyTTL = 10 * time.Second

// TypingRepository stores ephemeral typing signals in Redis, one key per
// room/user pair holding the signal time in unix milliseconds.
type TypingRepository struct {
	client *redis.Client
}

func NewTypingRepository(client *redis.Client) *TypingRepository {
	return &TypingRepository{client: client}
}

func typingKey(roomID string, userID int64) string {
	return "typing:" + roomID + ":" + strconv.FormatInt(userID, 10)
}

func (r *TypingRepository) SetTyping(ctx context.Context, roomID string, userID int64, at time.Time) error {
	return r.client.Set(ctx, typingKey(roomID, userID), at.UnixMilli(), typingKeyTTL).Err()
}

func (r *TypingRepository) ClearTyping(ctx context.Context, roomID string, userID int64) error {
	return r.client.Del(ctx, typingKey(roomID, userID)).Err()
}

// GetTyping returns the stored signal time, or nil when the user has no
// live signal.
func (r *TypingRepository) GetTyping(ctx context.Context, roomID string, userID int64) (*time.Time, error) {
	value, err := r.client.Get(ctx, typingKey(roomID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	at := time.UnixMilli(millis).UTC()
	return &at, nil
}
