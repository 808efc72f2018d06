package orch

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator wires admission, the connection hub and the media queue.
type Orchestrator struct {
	Gate     *app.Gate
	Registry *app.Registry
	Hub      *core.Hub
	Queue    *app.Queue
	Typing   *app.TypingTracker
	Policy   app.Policy
}

// New builds an orchestrator with its hub, typing tracker and queue. The
// queue drain stops when ctx is cancelled.
func New(ctx context.Context, gate *app.Gate, registry *app.Registry, policy app.Policy, typingTimeout time.Duration) *Orchestrator {
	o := &Orchestrator{
		Gate:     gate,
		Registry: registry,
		Hub:      core.NewHub(),
		Policy:   policy,
	}
	o.Typing = app.NewTypingTracker(typingTimeout, o.EmitTyping)
	o.Queue = app.NewQueue(ctx, o)
	return o
}

// broadcast fans v out to every attached connection and applies the
// backpressure policy to the ones that could not take it.
func (o *Orchestrator) broadcast(v any) error {
	frame, err := core.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrBroadcastDelivery, err)
	}
	res := o.Hub.Broadcast(frame)
	if len(res.Dropped) == 0 {
		return nil
	}
	for _, slow := range res.Dropped {
		if o.Policy == nil {
			break
		}
		switch o.Policy.OnBackPressure(slow) {
		case app.KickMember:
			o.Hub.Kick(slow)
		case app.NoAction:
		}
	}
	return fmt.Errorf("%w: %d of %d receivers dropped", domain.ErrBroadcastDelivery, len(res.Dropped), res.SendTo+len(res.Dropped))
}

func (o *Orchestrator) send(sid domain.ConnectionID, v any) {
	frame, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("send encode")
		return
	}
	if err := o.Hub.Send(sid, frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("send failed")
	}
}

func (o *Orchestrator) broadcastRoster() {
	if err := o.broadcast(core.UserListEvent{Type: core.EventUserList, Users: o.Registry.AllNames()}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("roster broadcast")
	}
}

// Roster is a snapshot of the admitted display names.
func (o *Orchestrator) Roster() []string {
	return o.Registry.AllNames()
}

// Connections counts attached transports.
func (o *Orchestrator) Connections() int {
	return o.Hub.Count()
}

// EmitTyping is the TypingTracker sink.
func (o *Orchestrator) EmitTyping(username string, typing bool) {
	if err := o.broadcast(core.TypingEvent{Type: core.EventTyping, Username: username, IsTyping: typing}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("username", username).Msg("typing broadcast")
	}
}
