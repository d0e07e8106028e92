package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []bool
}

func (e *recordingEmitter) SendTyping(isTyping bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, isTyping)
	return nil
}

func (e *recordingEmitter) snapshot() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]bool, len(e.events))
	copy(out, e.events)
	return out
}

func TestTypingTrackerEmitsStartOncePerEpisode(t *testing.T) {
	em := &recordingEmitter{}
	tr := NewTypingTracker(em, 50*time.Millisecond)
	defer tr.Close()

	tr.InputChanged()
	tr.InputChanged()
	tr.InputChanged()

	require.Equal(t, []bool{true}, em.snapshot(), "repeat keystrokes must not re-emit the start event")
}

func TestTypingTrackerKeystrokesExtendTheTimer(t *testing.T) {
	em := &recordingEmitter{}
	tr := NewTypingTracker(em, 60*time.Millisecond)
	defer tr.Close()

	tr.InputChanged() // t=0
	time.Sleep(40 * time.Millisecond)
	tr.InputChanged() // t=40ms, timer rearmed to fire at t=100ms

	// At t=80ms the original deadline has passed but the rearmed one has not.
	time.Sleep(40 * time.Millisecond)
	require.Equal(t, []bool{true}, em.snapshot(), "stop must not fire before the extended deadline")

	// Well past t=100ms the stop has fired exactly once.
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, []bool{true, false}, em.snapshot())
}

func TestTypingTrackerNoStopWhileKeystrokesKeepArriving(t *testing.T) {
	em := &recordingEmitter{}
	tr := NewTypingTracker(em, 50*time.Millisecond)
	defer tr.Close()

	// Keystrokes land well inside the inactivity window, including right
	// around the moments the original deadline would have expired. Even
	// if the timer fires concurrently with a reset, no stop may be
	// emitted mid-episode.
	for i := 0; i < 20; i++ {
		tr.InputChanged()
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, []bool{true}, em.snapshot(), "stop fired while input was still active")

	require.Eventually(t, func() bool {
		ev := em.snapshot()
		return len(ev) == 2 && !ev[1]
	}, time.Second, 5*time.Millisecond, "exactly one stop after input goes quiet")
}

func TestTypingTrackerMessageSentStopsImmediately(t *testing.T) {
	em := &recordingEmitter{}
	tr := NewTypingTracker(em, 50*time.Millisecond)
	defer tr.Close()

	tr.InputChanged()
	tr.MessageSent()
	require.Equal(t, []bool{true, false}, em.snapshot())

	// The cancelled timer must not produce a second stop.
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, []bool{true, false}, em.snapshot())
}

func TestTypingTrackerMessageSentWhileIdleIsNoop(t *testing.T) {
	em := &recordingEmitter{}
	tr := NewTypingTracker(em, 50*time.Millisecond)
	defer tr.Close()

	tr.MessageSent()
	require.Empty(t, em.snapshot())
}

func TestTypingTrackerCloseMidEpisode(t *testing.T) {
	em := &recordingEmitter{}
	tr := NewTypingTracker(em, 50*time.Millisecond)

	tr.InputChanged()
	tr.Close()
	require.Equal(t, []bool{true, false}, em.snapshot(), "close must emit the stop synchronously")

	// Nothing fires late and nothing restarts after close.
	tr.InputChanged()
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, []bool{true, false}, em.snapshot())
}

func TestTypingTrackerNewEpisodeAfterExpiry(t *testing.T) {
	em := &recordingEmitter{}
	tr := NewTypingTracker(em, 30*time.Millisecond)
	defer tr.Close()

	tr.InputChanged()
	time.Sleep(60 * time.Millisecond)
	tr.InputChanged()
	time.Sleep(60 * time.Millisecond)

	require.Equal(t, []bool{true, false, true, false}, em.snapshot())
}

func TestTypingLabel(t *testing.T) {
	require.Equal(t, "", TypingLabel(nil))
	require.Equal(t, "Alice is typing…", TypingLabel([]string{"Alice"}))
	require.Equal(t, "Alice and Bob are typing…", TypingLabel([]string{"Alice", "Bob"}))
	require.Equal(t, "Alice, Bob and 2 others are typing…", TypingLabel([]string{"Alice", "Bob", "Carol", "Dave"}))
}
