package store

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTypingTimeout is how long after the last keystroke the local
// typing state expires.
const DefaultTypingTimeout = 3 * time.Second

// TypingEmitter broadcasts the local user's typing state. Satisfied by
// a live realtime channel.
type TypingEmitter interface {
	SendTyping(isTyping bool) error
}

// TypingTracker is a per-team two-state machine (Idle, Typing) that
// owns its inactivity timer. The first keystroke emits a single start
// event; further keystrokes only reset the timer. A stop event is
// emitted exactly once, whether the timer expires, the message is sent,
// or the tracker is closed.
type TypingTracker struct {
	mu        sync.Mutex
	emitter   TypingEmitter
	timeout   time.Duration
	timer     *time.Timer
	lastInput time.Time
	typing    bool
	closed    bool
}

// NewTypingTracker creates a tracker in the Idle state. A zero timeout
// selects the default.
func NewTypingTracker(emitter TypingEmitter, timeout time.Duration) *TypingTracker {
	if timeout <= 0 {
		timeout = DefaultTypingTimeout
	}
	return &TypingTracker{emitter: emitter, timeout: timeout}
}

// InputChanged records a keystroke. Idle → Typing emits a start event
// and arms the timer; Typing → Typing only rearms it.
func (t *TypingTracker) InputChanged() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.lastInput = time.Now()
	if t.typing {
		t.timer.Reset(t.timeout)
		return
	}

	t.typing = true
	t.timer = time.AfterFunc(t.timeout, t.expire)
	if err := t.emitter.SendTyping(true); err != nil {
		// Best effort: remote peers fall back to their own TTL pruning
		return
	}
}

// MessageSent transitions to Idle immediately: sending a message ends
// the typing episode.
func (t *TypingTracker) MessageSent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Close tears the tracker down. If it is mid-episode the stop event is
// emitted synchronously; the pending timer can never fire afterwards.
func (t *TypingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.stopLocked()
	t.closed = true
}

func (t *TypingTracker) expire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || !t.typing {
		return
	}
	// The timer may have fired just before a keystroke reset it, leaving
	// this call to run behind the reset. Re-arm for the remainder of the
	// inactivity window instead of cutting the episode short.
	if remaining := t.timeout - time.Since(t.lastInput); remaining > 0 {
		t.timer.Reset(remaining)
		return
	}
	t.stopLocked()
}

func (t *TypingTracker) stopLocked() {
	if !t.typing {
		return
	}
	t.typing = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	_ = t.emitter.SendTyping(false)
}

// TypingLabel renders the display text for a set of remote typers.
func TypingLabel(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s is typing…", names[0])
	case 2:
		return fmt.Sprintf("%s and %s are typing…", names[0], names[1])
	default:
		return fmt.Sprintf("%s, %s and %d others are typing…", names[0], names[1], len(names)-2)
	}
}
