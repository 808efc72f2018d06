package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// ImageBroadcaster emits one media item to every viewer.
type ImageBroadcaster interface {
	BroadcastImage(ctx context.Context, item domain.MediaItem) error
}

// Queue shows media items one at a time, in enqueue order, keeping each on
// screen for its display duration. At most one drain goroutine runs.
type Queue struct {
	ctx context.Context
	out ImageBroadcaster

	mu       sync.Mutex
	items    []domain.MediaItem
	draining bool
}

// NewQueue binds the drain lifetime to ctx; cancelling it stops the drain
// between items and leaves the rest queued.
func NewQueue(ctx context.Context, out ImageBroadcaster) *Queue {
	return &Queue{ctx: ctx, out: out}
}

// Enqueue appends item and starts a drain unless one is running. It never
// blocks on the drain.
func (q *Queue) Enqueue(item domain.MediaItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	pending := len(q.items)
	if q.draining {
		q.mu.Unlock()
		log.Debug().Str("module", "app.queue").Int("pending", pending).Msg("enqueued behind active drain")
		return
	}
	q.draining = true
	q.mu.Unlock()

	log.Debug().Str("module", "app.queue").Int("pending", pending).Msg("enqueued, starting drain")
	go q.drain()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) Draining() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draining
}

func (q *Queue) drain() {
	logger := log.With().Str("module", "app.queue").Logger()
	for {
		item, ok := q.next()
		if !ok {
			logger.Debug().Msg("drain finished")
			return
		}

		if err := q.out.BroadcastImage(q.ctx, item); err != nil {
			logger.Error().Err(err).Str("locator", item.Locator).Msg("broadcast failed, continuing")
		} else {
			logger.Info().Str("locator", item.Locator).Dur("display", item.DisplayDuration).Msg("image shown")
		}

		if !q.pause(item.DisplayDuration) {
			q.mu.Lock()
			q.draining = false
			q.mu.Unlock()
			logger.Info().Msg("drain stopped by shutdown")
			return
		}
	}
}

// next pops the head. The emptiness check and clearing the draining flag
// share the lock with Enqueue, so an item appended concurrently is either
// seen here or starts a new drain.
func (q *Queue) next() (domain.MediaItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 || q.ctx.Err() != nil {
		q.draining = false
		return domain.MediaItem{}, false
	}
	item := q.items[0]
	q.items[0] = domain.MediaItem{}
	q.items = q.items[1:]
	return item, true
}

func (q *Queue) pause(d time.Duration) bool {
	if d <= 0 {
		return q.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-q.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
