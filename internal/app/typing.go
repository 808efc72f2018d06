package app

import (
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/domain"
)

// TypingTracker turns "is typing" pings into start/stop indicators. Each
// session gets its own timer that reports stop after timeout of silence.
type TypingTracker struct {
	timeout time.Duration
	emit    func(username string, typing bool)

	mu     sync.Mutex
	timers map[domain.ConnectionID]*time.Timer
}

func NewTypingTracker(timeout time.Duration, emit func(username string, typing bool)) *TypingTracker {
	return &TypingTracker{
		timeout: timeout,
		emit:    emit,
		timers:  make(map[domain.ConnectionID]*time.Timer),
	}
}

func (t *TypingTracker) Start(sid domain.ConnectionID, username string) {
	t.mu.Lock()
	if old, ok := t.timers[sid]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		if t.timers[sid] != timer {
			t.mu.Unlock()
			return
		}
		delete(t.timers, sid)
		t.mu.Unlock()
		t.emit(username, false)
	})
	t.timers[sid] = timer
	t.mu.Unlock()

	t.emit(username, true)
}

func (t *TypingTracker) Stop(sid domain.ConnectionID, username string) {
	t.Forget(sid)
	t.emit(username, false)
}

// Forget cancels the pending timer without emitting anything and reports
// whether one was active.
func (t *TypingTracker) Forget(sid domain.ConnectionID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.timers[sid]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, sid)
	return true
}
