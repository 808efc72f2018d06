package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
	closed bool
}

func (f *fakeConn) TrySend(data Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func TestHub_Broadcast_ReportsDrops(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	ok := &fakeConn{}
	slow := &fakeConn{full: true}

	// Given one healthy and one saturated connection
	hub.Attach("a", ok)
	hub.Attach("b", slow)

	// When an event is broadcast
	res := hub.Broadcast(Frame("hello"))

	// Then the healthy one receives it and the slow one is reported
	req.Equal(1, res.SendTo)
	req.Equal([]domain.ConnectionID{"b"}, res.Dropped)
	req.Equal([]Frame{Frame("hello")}, ok.frames)
}

func TestHub_Detach_IsIdempotent(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	hub.Attach("a", &fakeConn{})

	req.True(hub.Detach("a"))
	req.False(hub.Detach("a"))
	req.Zero(hub.Count())
}

func TestHub_SendAndKick(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	conn := &fakeConn{}
	hub.Attach("a", conn)

	req.NoError(hub.Send("a", Frame("x")))
	req.ErrorIs(hub.Send("missing", Frame("x")), ErrUnknownConnection)

	req.True(hub.Kick("a"))
	req.True(conn.closed)
	req.False(hub.Kick("missing"))
}
