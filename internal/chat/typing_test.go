package chat

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingTypingWriter struct {
	mu     sync.Mutex
	sets   int
	clears int
	setErr error
}

func (w *recordingTypingWriter) SetTyping(_ context.Context, _ string, _ int64, _ time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sets++
	return w.setErr
}

func (w *recordingTypingWriter) ClearTyping(_ context.Context, _ string, _ int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clears++
	return nil
}

func (w *recordingTypingWriter) counts() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sets, w.clears
}

func waitForClears(t *testing.T, w *recordingTypingWriter, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, clears := w.counts(); clears >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	_, clears := w.counts()
	t.Fatalf("expected %d clears, got %d", want, clears)
}

func TestIsTypingAtStalenessWindow(t *testing.T) {
	now := time.Now()

	fresh := now.Add(-2999 * time.Millisecond)
	if !IsTypingAt(&fresh, now) {
		t.Errorf("expected signal at now-2999ms to count as typing")
	}

	stale := now.Add(-3001 * time.Millisecond)
	if IsTypingAt(&stale, now) {
		t.Errorf("expected signal at now-3001ms to count as idle")
	}

	if IsTypingAt(nil, now) {
		t.Errorf("expected nil signal to count as idle")
	}
}

func TestKeystrokeSignalsOnceUntilCleared(t *testing.T) {
	writer := &recordingTypingWriter{}
	reporter := NewTypingReporter(writer, "1_2", 1)
	defer reporter.Stop()

	reporter.Keystroke("h")
	reporter.Keystroke("he")
	reporter.Keystroke("hel")

	sets, clears := writer.counts()
	if sets != 1 {
		t.Fatalf("expected 1 set for a burst of keystrokes, got %d", sets)
	}
	if clears != 0 {
		t.Fatalf("expected no clears while typing, got %d", clears)
	}
}

func TestDebounceClearsAfterQuietPeriod(t *testing.T) {
	writer := &recordingTypingWriter{}
	reporter := NewTypingReporter(writer, "1_2", 1)
	reporter.debounce = 20 * time.Millisecond
	defer reporter.Stop()

	reporter.Keystroke("hello")
	waitForClears(t, writer, 1)

	// The next keystroke is a fresh idle-to-typing transition.
	reporter.Keystroke("again")
	if sets, _ := writer.counts(); sets != 2 {
		t.Fatalf("expected a second set after debounce clear, got %d", sets)
	}
}

func TestEmptyInputClearsImmediately(t *testing.T) {
	writer := &recordingTypingWriter{}
	reporter := NewTypingReporter(writer, "1_2", 1)
	defer reporter.Stop()

	reporter.Keystroke("hello")
	reporter.Keystroke("")

	sets, clears := writer.counts()
	if sets != 1 || clears != 1 {
		t.Fatalf("expected 1 set and 1 clear, got %d and %d", sets, clears)
	}
}

func TestEmptyInputWhileIdleWritesNothing(t *testing.T) {
	writer := &recordingTypingWriter{}
	reporter := NewTypingReporter(writer, "1_2", 1)
	defer reporter.Stop()

	reporter.Keystroke("   ")

	sets, clears := writer.counts()
	if sets != 0 || clears != 0 {
		t.Fatalf("expected no writes for blank input while idle, got %d sets and %d clears", sets, clears)
	}
}

func TestMessageSentClearsSignal(t *testing.T) {
	writer := &recordingTypingWriter{}
	reporter := NewTypingReporter(writer, "1_2", 1)
	defer reporter.Stop()

	reporter.Keystroke("hello")
	reporter.MessageSent()

	if _, clears := writer.counts(); clears != 1 {
		t.Fatalf("expected clear before send, got %d clears", clears)
	}
}

func TestStopIsIdempotentAndBlocksFurtherKeystrokes(t *testing.T) {
	writer := &recordingTypingWriter{}
	reporter := NewTypingReporter(writer, "1_2", 1)

	reporter.Keystroke("hello")
	reporter.Stop()
	reporter.Stop()
	reporter.Keystroke("after stop")

	sets, clears := writer.counts()
	if sets != 1 {
		t.Fatalf("expected no sets after Stop, got %d", sets)
	}
	if clears != 1 {
		t.Fatalf("expected exactly 1 clear from Stop, got %d", clears)
	}
}
