package chat

import (
	"sync"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

// MessageSubscription delivers the full ordered message list of one room
// on the initial snapshot and after every subsequent change. Close tears
// the subscription down and is safe to call more than once.
type MessageSubscription struct {
	ch   chan []models.Message
	done chan struct{}
	once sync.Once
	stop func()

	// Degraded is set when the subscription runs against the local
	// fallback log instead of the primary store.
	Degraded bool
}

func NewMessageSubscription(stop func()) *MessageSubscription {
	return &MessageSubscription{
		ch:   make(chan []models.Message, 1),
		done: make(chan struct{}),
		stop: stop,
	}
}

func (s *MessageSubscription) Messages() <-chan []models.Message {
	return s.ch
}

// Done is closed when the subscription shuts down.
func (s *MessageSubscription) Done() <-chan struct{} {
	return s.done
}

func (s *MessageSubscription) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
}

// Deliver hands a snapshot to the consumer, replacing any unconsumed one.
// Snapshots are whole-state, so dropping a stale one loses nothing.
func (s *MessageSubscription) Deliver(messages []models.Message) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.ch <- messages:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- messages:
		default:
		}
	}
}

// RoomsSubscription delivers a user's room list ordered by last activity,
// re-sent on every change.
type RoomsSubscription struct {
	ch   chan []models.RoomSummary
	done chan struct{}
	once sync.Once
	stop func()
}

func NewRoomsSubscription(stop func()) *RoomsSubscription {
	return &RoomsSubscription{
		ch:   make(chan []models.RoomSummary, 1),
		done: make(chan struct{}),
		stop: stop,
	}
}

func (s *RoomsSubscription) Rooms() <-chan []models.RoomSummary {
	return s.ch
}

func (s *RoomsSubscription) Done() <-chan struct{} {
	return s.done
}

func (s *RoomsSubscription) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
}

func (s *RoomsSubscription) Deliver(rooms []models.RoomSummary) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.ch <- rooms:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- rooms:
		default:
		}
	}
}

// TypingSubscription delivers the peer's typing flag: true when the peer
// signals typing, false on an explicit clear or once the reader-side
// staleness window lapses without one.
type TypingSubscription struct {
	ch   chan bool
	done chan struct{}
	once sync.Once
	stop func()
}

func NewTypingSubscription(stop func()) *TypingSubscription {
	return &TypingSubscription{
		ch:   make(chan bool, 1),
		done: make(chan struct{}),
		stop: stop,
	}
}

func (s *TypingSubscription) Typing() <-chan bool {
	return s.ch
}

func (s *TypingSubscription) Done() <-chan struct{} {
	return s.done
}

func (s *TypingSubscription) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
}

func (s *TypingSubscription) Deliver(typing bool) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.ch <- typing:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- typing:
		default:
		}
	}
}
