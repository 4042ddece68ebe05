package chatws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Rajat-oss/GameHubBack/internal/chat"
	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
)

// sessionServiceStub satisfies the session's service surface and doubles
// as the typing writer so one ordered trace covers both.
type sessionServiceStub struct {
	mu       sync.Mutex
	trace    []string
	sends    []services.SendMessageInput
	seen     int
	sendErr  error
	degraded bool

	messages *chat.MessageSubscription
	typing   *chat.TypingSubscription
}

func newSessionServiceStub() *sessionServiceStub {
	return &sessionServiceStub{
		messages: chat.NewMessageSubscription(nil),
		typing:   chat.NewTypingSubscription(nil),
	}
}

func (s *sessionServiceStub) record(event string) {
	s.mu.Lock()
	s.trace = append(s.trace, event)
	s.mu.Unlock()
}

func (s *sessionServiceStub) Send(_ context.Context, input services.SendMessageInput) (*services.ChatDelivery, error) {
	s.record("send")
	s.mu.Lock()
	s.sends = append(s.sends, input)
	s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &services.ChatDelivery{
		Message:  models.Message{ID: 1, Body: input.Body, SenderID: input.SenderID},
		Degraded: s.degraded,
	}, nil
}

func (s *sessionServiceStub) MarkSeen(_ context.Context, _, _, _ int64) error {
	s.mu.Lock()
	s.seen++
	s.mu.Unlock()
	return nil
}

func (s *sessionServiceStub) Subscribe(_ context.Context, _, _ int64) *chat.MessageSubscription {
	return s.messages
}

func (s *sessionServiceStub) SubscribeTyping(_ context.Context, _, _ int64) *chat.TypingSubscription {
	return s.typing
}

func (s *sessionServiceStub) TypingReporterFor(roomID string, userID int64) *chat.TypingReporter {
	return chat.NewTypingReporter(s, roomID, userID)
}

func (s *sessionServiceStub) SetTyping(_ context.Context, _ string, _ int64, _ time.Time) error {
	s.record("set-typing")
	return nil
}

func (s *sessionServiceStub) ClearTyping(_ context.Context, _ string, _ int64) error {
	s.record("clear-typing")
	return nil
}

func (s *sessionServiceStub) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.trace))
	copy(out, s.trace)
	return out
}

func sessionProfiles() (*models.Profile, *models.Profile) {
	viewer := &models.Profile{UserID: 1, Username: "alice", DisplayName: "Alice"}
	peer := &models.Profile{UserID: 2, Username: "bob", DisplayName: "Bob"}
	return viewer, peer
}

func frame(t *testing.T, v inbound) []byte {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return payload
}

func TestSessionClearsTypingBeforeSend(t *testing.T) {
	service := newSessionServiceStub()
	hub := NewHub()
	go hub.Run()

	viewer, peer := sessionProfiles()
	conn := newScriptConn(false,
		frame(t, inbound{Type: "typing", Draft: "hel"}),
		frame(t, inbound{Type: "message", Body: "hello"}),
	)
	client := NewClient(hub, conn, viewer.UserID)
	NewSession(client, service, viewer, peer).Run(context.Background())

	got := service.events()
	want := []string{"set-typing", "clear-typing", "send"}
	if len(got) != len(want) {
		t.Fatalf("expected trace %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected trace %v, got %v", want, got)
		}
	}

	service.mu.Lock()
	defer service.mu.Unlock()
	if len(service.sends) != 1 || service.sends[0].Body != "hello" {
		t.Fatalf("unexpected sends: %+v", service.sends)
	}
	if service.sends[0].SenderName != "Alice" || service.sends[0].ReceiverName != "Bob" {
		t.Fatalf("expected resolved display names, got %+v", service.sends[0])
	}
}

func TestSessionMarksSeenOnFrame(t *testing.T) {
	service := newSessionServiceStub()
	hub := NewHub()
	go hub.Run()

	viewer, peer := sessionProfiles()
	conn := newScriptConn(false, frame(t, inbound{Type: "seen"}))
	client := NewClient(hub, conn, viewer.UserID)
	NewSession(client, service, viewer, peer).Run(context.Background())

	service.mu.Lock()
	defer service.mu.Unlock()
	if service.seen != 1 {
		t.Fatalf("expected 1 mark-seen call, got %d", service.seen)
	}
}

func TestSessionRelaysSnapshotsToConnection(t *testing.T) {
	service := newSessionServiceStub()
	hub := NewHub()
	go hub.Run()

	viewer, peer := sessionProfiles()
	conn := newScriptConn(true)
	client := NewClient(hub, conn, viewer.UserID)

	ran := make(chan struct{})
	go func() {
		NewSession(client, service, viewer, peer).Run(context.Background())
		close(ran)
	}()

	service.messages.Deliver([]models.Message{{ID: 4, Body: "hi"}})
	service.typing.Deliver(true)

	var sawMessages, sawTyping bool
	deadline := time.Now().Add(time.Second)
	for (!sawMessages || !sawTyping) && time.Now().Before(deadline) {
		for _, payload := range conn.writes() {
			var env envelope
			if err := json.Unmarshal(payload, &env); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			switch env.Type {
			case "messages":
				if len(env.Messages) == 1 && env.Messages[0].Body == "hi" {
					sawMessages = true
				}
			case "typing":
				if env.Typing != nil && *env.Typing {
					sawTyping = true
				}
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !sawMessages {
		t.Fatalf("expected a messages frame on the connection")
	}
	if !sawTyping {
		t.Fatalf("expected a typing frame on the connection")
	}

	_ = conn.Close()
	waitClosed(t, ran, "the session")
}

func TestSessionTeardownClosesEverything(t *testing.T) {
	service := newSessionServiceStub()
	hub := NewHub()
	go hub.Run()

	viewer, peer := sessionProfiles()
	conn := newScriptConn(false)
	client := NewClient(hub, conn, viewer.UserID)
	NewSession(client, service, viewer, peer).Run(context.Background())

	waitClosed(t, service.messages.Done(), "the message subscription")
	waitClosed(t, service.typing.Done(), "the typing subscription")
	waitClosed(t, client.done, "the client")
	waitClosed(t, conn.closed, "the connection")
}

func TestSessionReportsSendErrors(t *testing.T) {
	service := newSessionServiceStub()
	service.sendErr = services.ErrInvalidInput
	hub := NewHub()
	go hub.Run()

	viewer, peer := sessionProfiles()
	conn := newScriptConn(true, frame(t, inbound{Type: "message", Body: "   "}))
	client := NewClient(hub, conn, viewer.UserID)

	ran := make(chan struct{})
	go func() {
		NewSession(client, service, viewer, peer).Run(context.Background())
		close(ran)
	}()

	var sawError bool
	deadline := time.Now().Add(time.Second)
	for !sawError && time.Now().Before(deadline) {
		for _, payload := range conn.writes() {
			var env envelope
			if err := json.Unmarshal(payload, &env); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			if env.Type == "error" && env.Error == "invalid message" {
				sawError = true
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !sawError {
		t.Fatalf("expected an error frame on the connection")
	}

	_ = conn.Close()
	waitClosed(t, ran, "the session")
}
