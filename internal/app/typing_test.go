package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type typingSink struct {
	mu     sync.Mutex
	events []bool
}

func (s *typingSink) emit(_ string, typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, typing)
}

func (s *typingSink) get() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.events...)
}

func TestTypingTracker_ExpiresAfterTimeout(t *testing.T) {
	sink := &typingSink{}
	tracker := NewTypingTracker(30*time.Millisecond, sink.emit)

	tracker.Start("c1", "alice")

	require.Eventually(t, func() bool { return len(sink.get()) == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []bool{true, false}, sink.get())
}

func TestTypingTracker_RestartResetsTimer(t *testing.T) {
	sink := &typingSink{}
	tracker := NewTypingTracker(80*time.Millisecond, sink.emit)

	tracker.Start("c1", "alice")
	time.Sleep(40 * time.Millisecond)
	tracker.Start("c1", "alice")

	require.Eventually(t, func() bool { return len(sink.get()) == 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []bool{true, true, false}, sink.get())
}

func TestTypingTracker_StopAndForget(t *testing.T) {
	sink := &typingSink{}
	tracker := NewTypingTracker(time.Hour, sink.emit)

	tracker.Start("c1", "alice")
	tracker.Stop("c1", "alice")
	require.Equal(t, []bool{true, false}, sink.get())

	tracker.Start("c2", "bob")
	require.True(t, tracker.Forget("c2"))
	require.False(t, tracker.Forget("c2"))
	require.Equal(t, []bool{true, false, true}, sink.get())
}
