package chat

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	EventMessage = "message"
	EventRead    = "read"
	EventTyping  = "typing"
	EventRooms   = "rooms"
)

// Event is the change notice fanned out to live subscribers of a room or
// of a user's room list.
type Event struct {
	Kind   string `json:"kind"`
	RoomID string `json:"room_id,omitempty"`
	UserID int64  `json:"user_id,omitempty"`
	Typing bool   `json:"typing,omitempty"`
}

// RoomChannel names the pub/sub channel carrying one room's change events.
func RoomChannel(roomID string) string {
	return "chat:room:" + roomID
}

// UserRoomsChannel names the channel carrying room-list changes for a user.
func UserRoomsChannel(userID int64) string {
	return "chat:rooms:" + strconv.FormatInt(userID, 10)
}

// Bus fans chat events out to live subscribers across server instances.
type Bus interface {
	Publish(ctx context.Context, channel string, event Event) error
	Subscribe(ctx context.Context, channel string) (EventStream, error)
}

// EventStream is one open subscription on the bus. Close is idempotent.
type EventStream interface {
	Events() <-chan Event
	Close() error
}

// RedisBus carries chat events over Redis pub/sub channels.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string) (EventStream, error) {
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	stream := &redisEventStream{
		pubsub: pubsub,
		events: make(chan Event, 16),
	}
	go stream.pump()
	return stream, nil
}

type redisEventStream struct {
	pubsub *redis.PubSub
	events chan Event
}

func (s *redisEventStream) pump() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("chat event decode: %v", err)
			continue
		}
		select {
		case s.events <- event:
		default:
			// Slow consumer; drop the oldest pending event so the
			// channel keeps moving. Subscribers re-query full state
			// per event, so a dropped notice only delays delivery.
			select {
			case <-s.events:
			default:
			}
			s.events <- event
		}
	}
}

func (s *redisEventStream) Events() <-chan Event {
	return s.events
}

func (s *redisEventStream) Close() error {
	return s.pubsub.Close()
}
