package orch

import (
	"context"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Publish hands a transcoded item to the sequential queue.
func (o *Orchestrator) Publish(item domain.MediaItem) {
	log.Info().Str("module", "orch").Str("locator", item.Locator).Dur("display", item.DisplayDuration).Msg("media queued")
	o.Queue.Enqueue(item)
}

// BroadcastImage implements app.ImageBroadcaster.
func (o *Orchestrator) BroadcastImage(_ context.Context, item domain.MediaItem) error {
	return o.broadcast(core.NewImageEvent{
		Type:            core.EventNewImage,
		ImageURL:        item.Locator,
		DisplayDuration: item.DisplayDuration.Milliseconds(),
		Uploader:        item.Uploader,
	})
}

// Pending reports how many items wait behind the one on screen.
func (o *Orchestrator) Pending() int {
	if o.Queue == nil {
		return 0
	}
	return o.Queue.Len()
}
