package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Registry binds live connections to unique display names.
type Registry struct {
	mu     sync.RWMutex
	byConn map[domain.ConnectionID]string
	byName map[string]domain.ConnectionID
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[domain.ConnectionID]string),
		byName: make(map[string]domain.ConnectionID),
	}
}

// Register binds name to sid. The uniqueness check and the bind happen in
// one critical section. A connection that already holds another name is
// rebound and its old name released.
func (r *Registry) Register(sid domain.ConnectionID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byName[name]; ok {
		if owner == sid {
			return nil
		}
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Str("username", name).Msg("username already taken")
		return domain.ErrNameTaken
	}
	if old, ok := r.byConn[sid]; ok {
		delete(r.byName, old)
	}
	r.byConn[sid] = name
	r.byName[name] = sid
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", name).Msg("registered username")
	return nil
}

// Remove releases the name held by sid. Safe to call any number of times.
func (r *Registry) Remove(sid domain.ConnectionID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.byConn[sid]
	if !ok {
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("remove: unregistered connection")
		return "", false
	}
	delete(r.byConn, sid)
	delete(r.byName, name)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", name).Msg("released username")
	return name, true
}

func (r *Registry) Lookup(sid domain.ConnectionID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byConn[sid]
	return name, ok
}

// AllNames returns a sorted snapshot of the registered names.
func (r *Registry) AllNames() []string {
	r.mu.RLock()
	names := lo.Values(r.byConn)
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
