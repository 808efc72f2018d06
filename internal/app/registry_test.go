package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ConcurrentDistinctNames_AllSucceed(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = registry.Register(domain.ConnectionID(fmt.Sprintf("c%d", i)), fmt.Sprintf("user%02d", i))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		req.NoError(err)
	}
	req.Equal(n, registry.Len())
	for i := range n {
		name, ok := registry.Lookup(domain.ConnectionID(fmt.Sprintf("c%d", i)))
		req.True(ok)
		req.Equal(fmt.Sprintf("user%02d", i), name)
	}
}

func TestRegistry_ConcurrentSameName_ExactlyOneWins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = registry.Register(domain.ConnectionID(fmt.Sprintf("c%d", i)), "alice")
		}()
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		req.ErrorIs(err, domain.ErrNameTaken)
	}
	req.Equal(1, wins)
	req.Equal([]string{"alice"}, registry.AllNames())
}

func TestRegistry_Remove_FreesName(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given alice is registered on c1
	req.NoError(registry.Register("c1", "alice"))
	req.ErrorIs(registry.Register("c2", "alice"), domain.ErrNameTaken)

	// When c1 goes away
	name, ok := registry.Remove("c1")
	req.True(ok)
	req.Equal("alice", name)

	// Then another connection can claim the name
	req.NoError(registry.Register("c2", "alice"))
}

func TestRegistry_Remove_UnknownIsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register("c1", "alice"))

	_, ok := registry.Remove("nobody")
	req.False(ok)

	_, ok = registry.Remove("c1")
	req.True(ok)
	_, ok = registry.Remove("c1")
	req.False(ok)
}

func TestRegistry_Register_SameConnectionRebinds(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.NoError(registry.Register("c1", "alice"))
	req.NoError(registry.Register("c1", "alice"))
	req.NoError(registry.Register("c1", "alicia"))

	req.Equal([]string{"alicia"}, registry.AllNames())
	req.NoError(registry.Register("c2", "alice"))
}

func TestRegistry_AllNames_IsSnapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register("c1", "bob"))
	req.NoError(registry.Register("c2", "alice"))

	names := registry.AllNames()
	req.Equal([]string{"alice", "bob"}, names)

	registry.Remove("c1")
	req.Equal([]string{"alice", "bob"}, names)
	req.Equal([]string{"alice"}, registry.AllNames())
}
