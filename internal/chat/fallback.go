package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/Rajat-oss/GameHubBack/internal/models"
)

// FallbackLog is the process-local message buffer used while the primary
// store is unreachable. Appended messages are visible to local subscribers
// only and are never replayed into the primary store once it recovers;
// deliveries through this path are flagged degraded so callers can tell.
type FallbackLog struct {
	mu      sync.Mutex
	rooms   map[string][]models.Message
	subs    map[string]map[int]chan []models.Message
	nextSub int
	nextID  int64
}

func NewFallbackLog() *FallbackLog {
	return &FallbackLog{
		rooms: make(map[string][]models.Message),
		subs:  make(map[string]map[int]chan []models.Message),
	}
}

// Append stores a message locally, assigning a negative id so it can never
// collide with a server-assigned one, and fans the room's full ordered log
// out to local subscribers.
func (l *FallbackLog) Append(roomID string, msg models.Message) models.Message {
	l.mu.Lock()
	l.nextID--
	msg.ID = l.nextID
	msg.RoomID = roomID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	l.rooms[roomID] = append(l.rooms[roomID], msg)

	snapshot := l.replayLocked(roomID)
	targets := make([]chan []models.Message, 0, len(l.subs[roomID]))
	for _, ch := range l.subs[roomID] {
		targets = append(targets, ch)
	}
	l.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- snapshot:
		default:
			// Latest-wins: replace whatever the subscriber has not
			// consumed yet with the fresher snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
	return msg
}

// Replay returns the room's locally buffered messages in non-decreasing
// creation order.
func (l *FallbackLog) Replay(roomID string) []models.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.replayLocked(roomID)
}

func (l *FallbackLog) replayLocked(roomID string) []models.Message {
	out := make([]models.Message, len(l.rooms[roomID]))
	copy(out, l.rooms[roomID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Subscribe registers for local-only updates to one room. The returned
// cancel func is idempotent and must be called when the consumer goes away.
func (l *FallbackLog) Subscribe(roomID string) (<-chan []models.Message, func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	ch := make(chan []models.Message, 1)
	if l.subs[roomID] == nil {
		l.subs[roomID] = make(map[int]chan []models.Message)
	}
	l.subs[roomID][id] = ch
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs[roomID], id)
			if len(l.subs[roomID]) == 0 {
				delete(l.subs, roomID)
			}
			l.mu.Unlock()
		})
	}
	return ch, cancel
}
