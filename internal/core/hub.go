package core

import (
	"errors"
	"sync"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrUnknownConnection = errors.New("unknown connection")

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnectionID
}

// Hub is the threadsafe set of attached connections.
// It never closes adapter-owned resources except on explicit Kick.
type Hub struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]SignalConnection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[domain.ConnectionID]SignalConnection)}
}

func (h *Hub) Attach(id domain.ConnectionID, conn SignalConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = conn
	log.Info().Str("module", "core.hub").Str("sid", string(id)).Msg("connection attached")
}

func (h *Hub) Detach(id domain.ConnectionID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[id]; !ok {
		return false
	}
	delete(h.conns, id)
	log.Info().Str("module", "core.hub").Str("sid", string(id)).Msg("connection detached")
	return true
}

// Kick closes the transport of id. The adapter's read loop then runs the
// regular disconnect path.
func (h *Hub) Kick(id domain.ConnectionID) bool {
	h.mu.RLock()
	conn, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	conn.Close()
	log.Warn().Str("module", "core.hub").Str("sid", string(id)).Msg("connection kicked")
	return true
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) IDs() []domain.ConnectionID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(h.conns)
}

func (h *Hub) Send(id domain.ConnectionID, data Frame) error {
	h.mu.RLock()
	conn, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return ErrUnknownConnection
	}
	return conn.TrySend(data)
}

func (h *Hub) Broadcast(data Frame) PublishResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res := PublishResult{}
	for sid, conn := range h.conns {
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.hub").Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
