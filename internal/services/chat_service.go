package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/Rajat-oss/GameHubBack/internal/chat"
	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUserNotFound = errors.New("user not found")
	ErrNotFound     = errors.New("not found")
)

const (
	maxMessageLength    = 2000
	messagePreviewLimit = 120
)

type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type messageStore interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
	ListUnreadIDs(ctx context.Context, roomID string, receiverID int64) ([]int64, error)
	MarkRead(ctx context.Context, messageID int64, receiverID int64) (bool, error)
}

type roomLister interface {
	ListForParticipant(ctx context.Context, userID int64) ([]models.RoomSummary, error)
}

type typingStore interface {
	SetTyping(ctx context.Context, roomID string, userID int64, at time.Time) error
	ClearTyping(ctx context.Context, roomID string, userID int64) error
	GetTyping(ctx context.Context, roomID string, userID int64) (*time.Time, error)
}

type NewMessageNotification struct {
	ReceiverID   int64
	SenderID     int64
	SenderName   string
	SenderAvatar *string
	Preview      string
}

type messageNotifier interface {
	NotifyNewMessage(ctx context.Context, notification NewMessageNotification)
}

// ChatService implements the messaging channel: sends with room upsert,
// live subscriptions, read receipts and typing presence. Send failures
// against the primary store degrade to a process-local fallback log;
// presence and notification failures are logged and dropped.
type ChatService struct {
	db       txStarter
	messages messageStore
	rooms    roomLister
	typing   typingStore
	bus      chat.Bus
	fallback *chat.FallbackLog
	notifier messageNotifier
}

func NewChatService(
	db txStarter,
	messages messageStore,
	rooms roomLister,
	typing typingStore,
	bus chat.Bus,
	fallback *chat.FallbackLog,
	notifier messageNotifier,
) *ChatService {
	return &ChatService{
		db:       db,
		messages: messages,
		rooms:    rooms,
		typing:   typing,
		bus:      bus,
		fallback: fallback,
		notifier: notifier,
	}
}

type SendMessageInput struct {
	SenderID     int64
	ReceiverID   int64
	SenderName   string
	ReceiverName string
	SenderAvatar *string
	Body         string
}

type ChatDelivery struct {
	Message models.Message `json:"message"`
	Room    *models.Room   `json:"room,omitempty"`

	// Degraded marks a message that only reached the local fallback log.
	// It will not reach the peer and is never replayed into the primary
	// store once connectivity returns.
	Degraded bool `json:"degraded"`
}

func (s *ChatService) Send(ctx context.Context, input SendMessageInput) (*ChatDelivery, error) {
	if input.SenderID <= 0 || input.ReceiverID <= 0 || input.SenderID == input.ReceiverID {
		return nil, ErrInvalidInput
	}
	body := strings.TrimSpace(input.Body)
	if body == "" || utf8.RuneCountInString(body) > maxMessageLength {
		return nil, ErrInvalidInput
	}

	roomID := chat.RoomIDFor(input.SenderID, input.ReceiverID)

	delivery, err := s.sendPrimary(ctx, roomID, input, body)
	if err != nil {
		log.Printf("chat send for room %s degraded to fallback log: %v", roomID, err)
		message := s.fallback.Append(roomID, models.Message{
			SenderID:     input.SenderID,
			ReceiverID:   input.ReceiverID,
			SenderName:   input.SenderName,
			ReceiverName: input.ReceiverName,
			Body:         body,
			CreatedAt:    time.Now().UTC(),
		})
		return &ChatDelivery{Message: message, Degraded: true}, nil
	}

	s.publish(chat.RoomChannel(roomID), chat.Event{Kind: chat.EventMessage, RoomID: roomID})
	s.publish(chat.UserRoomsChannel(input.SenderID), chat.Event{Kind: chat.EventRooms, RoomID: roomID})
	s.publish(chat.UserRoomsChannel(input.ReceiverID), chat.Event{Kind: chat.EventRooms, RoomID: roomID})

	if s.notifier != nil {
		notification := NewMessageNotification{
			ReceiverID:   input.ReceiverID,
			SenderID:     input.SenderID,
			SenderName:   input.SenderName,
			SenderAvatar: input.SenderAvatar,
			Preview:      preview(body),
		}
		// Out-of-band; a notification failure must never fail the send.
		go s.notifier.NotifyNewMessage(context.Background(), notification)
	}

	return delivery, nil
}

func (s *ChatService) sendPrimary(
	ctx context.Context,
	roomID string,
	input SendMessageInput,
	body string,
) (*ChatDelivery, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessages := repository.NewMessageRepository(tx)
	txRooms := repository.NewRoomRepository(tx)

	participantA, participantB := input.SenderID, input.ReceiverID
	nameA, nameB := input.SenderName, input.ReceiverName
	if participantB < participantA {
		participantA, participantB = participantB, participantA
		nameA, nameB = nameB, nameA
	}

	// The room row must exist before the message insert; messages carry a
	// foreign key on rooms, so first contact would otherwise fail.
	room, err := txRooms.Upsert(ctx, repository.UpsertRoomInput{
		ID:           roomID,
		ParticipantA: participantA,
		ParticipantB: participantB,
		NameA:        nameA,
		NameB:        nameB,
		LastMessage:  preview(body),
	})
	if err != nil {
		return nil, err
	}

	message, err := txMessages.Create(ctx, repository.CreateMessageInput{
		RoomID:       roomID,
		SenderID:     input.SenderID,
		ReceiverID:   input.ReceiverID,
		SenderName:   input.SenderName,
		ReceiverName: input.ReceiverName,
		Body:         body,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ChatDelivery{Message: *message, Room: room}, nil
}

// ListMessages returns the conversation between the viewer and a peer in
// non-decreasing creation order.
func (s *ChatService) ListMessages(ctx context.Context, viewerID, peerID int64) ([]models.Message, error) {
	if viewerID <= 0 || peerID <= 0 || viewerID == peerID {
		return nil, ErrInvalidInput
	}
	return s.messages.ListByRoom(ctx, chat.RoomIDFor(viewerID, peerID))
}

// ListRooms returns the user's conversations ordered by last activity.
func (s *ChatService) ListRooms(ctx context.Context, userID int64) ([]models.RoomSummary, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.rooms.ListForParticipant(ctx, userID)
}

// MarkSeen flips every unread message addressed to the viewer in the
// conversation with the peer. The updates are issued concurrently and
// independently; partial failure is tolerated and logged, never rolled
// back. Calling it again on an already-read room is a no-op.
func (s *ChatService) MarkSeen(ctx context.Context, userA, userB, viewerID int64) error {
	if userA <= 0 || userB <= 0 || userA == userB {
		return ErrInvalidInput
	}
	if viewerID != userA && viewerID != userB {
		return ErrForbidden
	}

	roomID := chat.RoomIDFor(userA, userB)

	ids, err := s.messages.ListUnreadIDs(ctx, roomID, viewerID)
	if err != nil {
		log.Printf("mark seen lookup for room %s: %v", roomID, err)
		return nil
	}
	if len(ids) == 0 {
		return nil
	}

	var flipped int64
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(messageID int64) {
			defer wg.Done()
			ok, err := s.messages.MarkRead(ctx, messageID, viewerID)
			if err != nil {
				log.Printf("mark seen update for message %d: %v", messageID, err)
				return
			}
			if ok {
				atomic.AddInt64(&flipped, 1)
			}
		}(id)
	}
	wg.Wait()

	if atomic.LoadInt64(&flipped) > 0 {
		s.publish(chat.RoomChannel(roomID), chat.Event{Kind: chat.EventRead, RoomID: roomID, UserID: viewerID})
	}
	return nil
}

// Subscribe opens a live view of the conversation between two users. The
// full ordered message list is delivered on the initial snapshot and after
// every change. On store or bus failure the subscription degrades to the
// local fallback log and keeps delivering local-only updates; it never
// returns an error.
func (s *ChatService) Subscribe(ctx context.Context, userA, userB int64) *chat.MessageSubscription {
	roomID := chat.RoomIDFor(userA, userB)

	stream, err := s.bus.Subscribe(ctx, chat.RoomChannel(roomID))
	if err != nil {
		log.Printf("chat subscribe bus for room %s: %v", roomID, err)
		return s.subscribeFallback(roomID)
	}

	initial, err := s.messages.ListByRoom(ctx, roomID)
	if err != nil {
		log.Printf("chat subscribe replay for room %s: %v", roomID, err)
		_ = stream.Close()
		return s.subscribeFallback(roomID)
	}

	sub := chat.NewMessageSubscription(func() {
		_ = stream.Close()
	})

	go func() {
		sub.Deliver(initial)
		for {
			select {
			case <-sub.Done():
				return
			case event, ok := <-stream.Events():
				if !ok {
					return
				}
				if event.Kind != chat.EventMessage && event.Kind != chat.EventRead {
					continue
				}
				messages, err := s.messages.ListByRoom(ctx, roomID)
				if err != nil {
					log.Printf("chat subscribe refresh for room %s: %v", roomID, err)
					continue
				}
				sub.Deliver(messages)
			}
		}
	}()

	return sub
}

func (s *ChatService) subscribeFallback(roomID string) *chat.MessageSubscription {
	updates, cancel := s.fallback.Subscribe(roomID)
	sub := chat.NewMessageSubscription(cancel)
	sub.Degraded = true

	go func() {
		sub.Deliver(s.fallback.Replay(roomID))
		for {
			select {
			case <-sub.Done():
				return
			case snapshot := <-updates:
				sub.Deliver(snapshot)
			}
		}
	}()

	return sub
}

// SubscribeRooms opens a live view of the user's room list. On bus failure
// it still delivers the initial snapshot and simply stops updating.
func (s *ChatService) SubscribeRooms(ctx context.Context, userID int64) *chat.RoomsSubscription {
	stream, err := s.bus.Subscribe(ctx, chat.UserRoomsChannel(userID))
	if err != nil {
		log.Printf("rooms subscribe bus for user %d: %v", userID, err)
		stream = nil
	}

	sub := chat.NewRoomsSubscription(func() {
		if stream != nil {
			_ = stream.Close()
		}
	})

	go func() {
		rooms, err := s.rooms.ListForParticipant(ctx, userID)
		if err != nil {
			log.Printf("rooms snapshot for user %d: %v", userID, err)
			rooms = []models.RoomSummary{}
		}
		sub.Deliver(rooms)

		if stream == nil {
			return
		}
		for {
			select {
			case <-sub.Done():
				return
			case event, ok := <-stream.Events():
				if !ok {
					return
				}
				if event.Kind != chat.EventRooms {
					continue
				}
				rooms, err := s.rooms.ListForParticipant(ctx, userID)
				if err != nil {
					log.Printf("rooms refresh for user %d: %v", userID, err)
					continue
				}
				sub.Deliver(rooms)
			}
		}
	}()

	return sub
}

// SetTyping records the user's typing signal and announces it to the room.
// Part of the chat.TypingWriter contract used by TypingReporter.
func (s *ChatService) SetTyping(ctx context.Context, roomID string, userID int64, at time.Time) error {
	if err := s.typing.SetTyping(ctx, roomID, userID, at); err != nil {
		return err
	}
	s.publish(chat.RoomChannel(roomID), chat.Event{Kind: chat.EventTyping, RoomID: roomID, UserID: userID, Typing: true})
	return nil
}

// ClearTyping removes the user's typing signal and announces the clear.
func (s *ChatService) ClearTyping(ctx context.Context, roomID string, userID int64) error {
	if err := s.typing.ClearTyping(ctx, roomID, userID); err != nil {
		return err
	}
	s.publish(chat.RoomChannel(roomID), chat.Event{Kind: chat.EventTyping, RoomID: roomID, UserID: userID, Typing: false})
	return nil
}

// TypingReporterFor builds the writer-side typing state machine for one
// user in one room.
func (s *ChatService) TypingReporterFor(roomID string, userID int64) *chat.TypingReporter {
	return chat.NewTypingReporter(s, roomID, userID)
}

// PeerTyping reports whether the peer's stored signal is still inside the
// staleness window. Transport errors read as "not typing".
func (s *ChatService) PeerTyping(ctx context.Context, viewerID, peerID int64) bool {
	roomID := chat.RoomIDFor(viewerID, peerID)
	signal, err := s.typing.GetTyping(ctx, roomID, peerID)
	if err != nil {
		log.Printf("typing lookup for room %s: %v", roomID, err)
		return false
	}
	return chat.IsTypingAt(signal, time.Now())
}

// SubscribeTyping follows the peer's typing flag in one room. An explicit
// clear from the writer flips it off immediately; if the clear never
// arrives, the reader-side staleness window flips it off on its own.
func (s *ChatService) SubscribeTyping(ctx context.Context, viewerID, peerID int64) *chat.TypingSubscription {
	roomID := chat.RoomIDFor(viewerID, peerID)

	stream, err := s.bus.Subscribe(ctx, chat.RoomChannel(roomID))
	if err != nil {
		log.Printf("typing subscribe bus for room %s: %v", roomID, err)
		stream = nil
	}

	sub := chat.NewTypingSubscription(func() {
		if stream != nil {
			_ = stream.Close()
		}
	})

	go func() {
		staleness := time.NewTimer(chat.TypingStaleAfter)
		stopStaleness := func() {
			if !staleness.Stop() {
				select {
				case <-staleness.C:
				default:
				}
			}
		}
		defer stopStaleness()

		typing := false
		if signal, err := s.typing.GetTyping(ctx, roomID, peerID); err != nil {
			log.Printf("typing snapshot for room %s: %v", roomID, err)
		} else if chat.IsTypingAt(signal, time.Now()) {
			typing = true
			stopStaleness()
			staleness.Reset(chat.TypingStaleAfter - time.Since(*signal))
		}
		if !typing {
			stopStaleness()
		}
		sub.Deliver(typing)

		// A nil events channel blocks forever, which keeps the staleness
		// timer working even when the bus subscription failed.
		var events <-chan chat.Event
		if stream != nil {
			events = stream.Events()
		}
		for {
			select {
			case <-sub.Done():
				return
			case <-staleness.C:
				sub.Deliver(false)
			case event, ok := <-events:
				if !ok {
					return
				}
				if event.Kind != chat.EventTyping || event.UserID != peerID {
					continue
				}
				stopStaleness()
				if event.Typing {
					staleness.Reset(chat.TypingStaleAfter)
				}
				sub.Deliver(event.Typing)
			}
		}
	}()

	return sub
}

func (s *ChatService) publish(channel string, event chat.Event) {
	if err := s.bus.Publish(context.Background(), channel, event); err != nil {
		log.Printf("chat event publish on %s: %v", channel, err)
	}
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= messagePreviewLimit {
		return body
	}
	return string(runes[:messagePreviewLimit])
}
