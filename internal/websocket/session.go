package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Rajat-oss/GameHubBack/internal/chat"
	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
)

type chatService interface {
	Send(ctx context.Context, input services.SendMessageInput) (*services.ChatDelivery, error)
	MarkSeen(ctx context.Context, userA, userB, viewerID int64) error
	Subscribe(ctx context.Context, userA, userB int64) *chat.MessageSubscription
	SubscribeTyping(ctx context.Context, viewerID, peerID int64) *chat.TypingSubscription
	TypingReporterFor(roomID string, userID int64) *chat.TypingReporter
}

// envelope is the single outbound frame shape. Type is one of
// "messages", "typing", "notification" or "error"; the matching field
// is set, the rest stay empty.
type envelope struct {
	Type         string               `json:"type"`
	Messages     []models.Message     `json:"messages,omitempty"`
	Degraded     bool                 `json:"degraded,omitempty"`
	Typing       *bool                `json:"typing,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
	Error        string               `json:"error,omitempty"`
}

type inbound struct {
	Type  string `json:"type"`
	Body  string `json:"body,omitempty"`
	Draft string `json:"draft,omitempty"`
}

// Session binds one websocket connection to a single conversation: it
// relays live message and typing updates outward and accepts message,
// typing and seen frames inward. The caller resolves both profiles up
// front so sends carry current display names.
type Session struct {
	client  *Client
	service chatService

	viewer *models.Profile
	peer   *models.Profile

	reporter *chat.TypingReporter
	messages *chat.MessageSubscription
	typing   *chat.TypingSubscription
}

func NewSession(client *Client, service chatService, viewer, peer *models.Profile) *Session {
	return &Session{
		client:  client,
		service: service,
		viewer:  viewer,
		peer:    peer,
	}
}

// Run drives the session until the connection drops. It registers the
// client on the hub, starts the relay goroutines and blocks in the read
// loop. All teardown happens here.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.client.hub.Register(s.client)
	go s.client.WritePump()

	roomID := chat.RoomIDFor(s.viewer.UserID, s.peer.UserID)
	s.reporter = s.service.TypingReporterFor(roomID, s.viewer.UserID)
	s.messages = s.service.Subscribe(ctx, s.viewer.UserID, s.peer.UserID)
	s.typing = s.service.SubscribeTyping(ctx, s.viewer.UserID, s.peer.UserID)

	defer func() {
		s.reporter.Stop()
		s.messages.Close()
		s.typing.Close()
		cancel()
		s.client.hub.Unregister(s.client)
		_ = s.client.conn.Close()
	}()

	go s.relayMessages()
	go s.relayTyping()

	s.readLoop(ctx)
}

func (s *Session) relayMessages() {
	for {
		select {
		case <-s.messages.Done():
			return
		case snapshot := <-s.messages.Messages():
			s.write(envelope{
				Type:     "messages",
				Messages: snapshot,
				Degraded: s.messages.Degraded,
			})
		}
	}
}

func (s *Session) relayTyping() {
	for {
		select {
		case <-s.typing.Done():
			return
		case typing := <-s.typing.Typing():
			s.write(envelope{Type: "typing", Typing: &typing})
		}
	}
}

func (s *Session) readLoop(ctx context.Context) {
	for {
		_, payload, err := s.client.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inbound
		if err := json.Unmarshal(payload, &frame); err != nil {
			s.writeError("invalid frame")
			continue
		}

		switch frame.Type {
		case "message":
			s.handleSend(ctx, frame.Body)
		case "typing":
			s.reporter.Keystroke(frame.Draft)
		case "seen":
			s.handleSeen(ctx)
		default:
			s.writeError("unsupported frame type")
		}
	}
}

func (s *Session) handleSend(ctx context.Context, body string) {
	// The typing signal clears before the send goes out, so the peer
	// never sees "typing" outlive the message it announced.
	s.reporter.MessageSent()

	delivery, err := s.service.Send(ctx, services.SendMessageInput{
		SenderID:     s.viewer.UserID,
		ReceiverID:   s.peer.UserID,
		SenderName:   s.viewer.DisplayName,
		ReceiverName: s.peer.DisplayName,
		SenderAvatar: s.viewer.AvatarURL,
		Body:         body,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			s.writeError("invalid message")
		} else {
			s.writeError("failed to send message")
		}
		return
	}

	// A degraded send never reaches the bus, so echo it back here;
	// healthy sends come back through the room subscription.
	if delivery.Degraded {
		s.write(envelope{
			Type:     "messages",
			Messages: []models.Message{delivery.Message},
			Degraded: true,
		})
	}
}

func (s *Session) handleSeen(ctx context.Context) {
	err := s.service.MarkSeen(ctx, s.viewer.UserID, s.peer.UserID, s.viewer.UserID)
	if err != nil && !errors.Is(err, services.ErrInvalidInput) {
		log.Printf("chat session mark seen for user %d: %v", s.viewer.UserID, err)
	}
}

func (s *Session) write(env envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("chat session encode %s frame: %v", env.Type, err)
		return
	}
	s.client.Send(payload)
}

func (s *Session) writeError(message string) {
	s.write(envelope{Type: "error", Error: message})
}
