package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

const (
	// TypingDebounce is how long the writer waits after the last keystroke
	// before clearing its own signal.
	TypingDebounce = 2 * time.Second

	// TypingStaleAfter is the reader-side staleness window. A signal older
	// than this counts as idle even if the writer never managed to clear it,
	// e.g. after an abrupt disconnect.
	TypingStaleAfter = 3 * time.Second
)

// TypingWriter persists the ephemeral typing signal for a room/user pair.
type TypingWriter interface {
	SetTyping(ctx context.Context, roomID string, userID int64, at time.Time) error
	ClearTyping(ctx context.Context, roomID string, userID int64) error
}

// IsTypingAt reports whether a stored signal still counts as typing at the
// given instant. A nil signal means the writer already cleared it.
func IsTypingAt(signal *time.Time, now time.Time) bool {
	return signal != nil && now.Sub(*signal) < TypingStaleAfter
}

// TypingReporter mirrors the local user's typing state for one room into
// the store. The signal is written once on the idle-to-typing transition
// and cleared when the input empties, a message is sent, the debounce
// window elapses without keystrokes, or the connection tears down.
// Write failures are logged and dropped; presence never blocks messaging.
type TypingReporter struct {
	writer   TypingWriter
	roomID   string
	userID   int64
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	signaled bool
	stopped  bool
}

func NewTypingReporter(writer TypingWriter, roomID string, userID int64) *TypingReporter {
	return &TypingReporter{
		writer:   writer,
		roomID:   roomID,
		userID:   userID,
		debounce: TypingDebounce,
	}
}

// Keystroke records an input change. Empty input clears the signal
// immediately; non-empty input signals typing and re-arms the debounce
// timer that clears the signal once the user goes quiet.
func (r *TypingReporter) Keystroke(text string) {
	if strings.TrimSpace(text) == "" {
		r.clear()
		return
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.clear)
	signal := !r.signaled
	r.signaled = true
	r.mu.Unlock()

	if signal {
		if err := r.writer.SetTyping(context.Background(), r.roomID, r.userID, time.Now().UTC()); err != nil {
			log.Printf("typing signal set for room %s: %v", r.roomID, err)
		}
	}
}

// MessageSent clears the signal before an outgoing message goes out.
func (r *TypingReporter) MessageSent() {
	r.clear()
}

// Stop clears any live signal and releases the timer. Safe to call more
// than once; the reporter accepts no keystrokes afterwards.
func (r *TypingReporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()
	r.clear()
}

func (r *TypingReporter) clear() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	wasSignaled := r.signaled
	r.signaled = false
	r.mu.Unlock()

	if !wasSignaled {
		return
	}
	if err := r.writer.ClearTyping(context.Background(), r.roomID, r.userID); err != nil {
		log.Printf("typing signal clear for room %s: %v", r.roomID, err)
	}
}
