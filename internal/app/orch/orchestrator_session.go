package orch

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// SessionHandle owns one admitted session for the lifetime of its
// connection. The transport drives it through OnReady, OnChat, OnTyping
// and OnDisconnect.
type SessionHandle struct {
	orch    *Orchestrator
	session domain.Session

	joined   sync.Once
	finished sync.Once
}

// Admit runs the handshake. On success the name is registered but the
// session receives nothing until Attach.
func (o *Orchestrator) Admit(ctx context.Context, sid domain.ConnectionID, hs app.Handshake) (*SessionHandle, error) {
	sess, err := o.Gate.Admit(ctx, sid, hs)
	if err != nil {
		return nil, err
	}
	return &SessionHandle{orch: o, session: sess}, nil
}

func (h *SessionHandle) Session() domain.Session { return h.session }

// Attach starts delivery of broadcasts to conn and greets the client.
func (h *SessionHandle) Attach(conn core.SignalConnection) {
	h.orch.Hub.Attach(h.session.ID, conn)
	h.orch.send(h.session.ID, core.WelcomeEvent{Type: core.EventWelcome, Username: h.session.Username})
}

// OnReady announces the session the first time and sends the roster to
// everyone.
func (h *SessionHandle) OnReady() {
	h.joined.Do(func() {
		notice := core.NoticeEvent{
			Type:     core.EventUserJoined,
			Username: h.session.Username,
			Message:  fmt.Sprintf("%s has joined the chat", h.session.Username),
		}
		if err := h.orch.broadcast(notice); err != nil {
			log.Warn().Err(err).Str("module", "orch").Msg("join broadcast")
		}
	})
	h.orch.broadcastRoster()
}

func (h *SessionHandle) OnChat(message string) {
	log.Debug().Str("module", "orch").Str("username", h.session.Username).Msg("chat message")
	ev := core.ChatEvent{Type: core.EventChat, Username: h.session.Username, Message: message}
	if err := h.orch.broadcast(ev); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("chat broadcast")
	}
}

func (h *SessionHandle) OnTyping(typing bool) {
	if typing {
		h.orch.Typing.Start(h.session.ID, h.session.Username)
		return
	}
	h.orch.Typing.Stop(h.session.ID, h.session.Username)
}

// SendError reports a per-session problem to this client only.
func (h *SessionHandle) SendError(reason string) {
	h.orch.send(h.session.ID, core.ErrorEvent{Type: core.EventError, Error: reason})
}

// Pong answers an application-level ping.
func (h *SessionHandle) Pong() {
	h.orch.send(h.session.ID, struct {
		Type string `json:"type"`
	}{Type: core.EventPong})
}

// OnDisconnect releases the session. Only the first call has any effect.
func (h *SessionHandle) OnDisconnect() {
	h.finished.Do(func() { h.orch.disconnect(h.session.ID) })
}

// Release undoes an admission whose transport never came up.
func (o *Orchestrator) Release(sid domain.ConnectionID) {
	o.Registry.Remove(sid)
}

func (o *Orchestrator) disconnect(sid domain.ConnectionID) {
	o.Hub.Detach(sid)
	wasTyping := o.Typing.Forget(sid)
	name, ok := o.Registry.Remove(sid)
	if !ok {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("unregistered client disconnected")
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("username", name).Msg("client disconnected")

	if wasTyping {
		o.EmitTyping(name, false)
	}
	notice := core.NoticeEvent{
		Type:     core.EventUserLeft,
		Username: name,
		Message:  fmt.Sprintf("%s has left the chat", name),
	}
	if err := o.broadcast(notice); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("leave broadcast")
	}
	o.broadcastRoster()
}
