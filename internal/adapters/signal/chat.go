package signal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/rs/zerolog/log"
)

type chatPayload struct {
	Type    string `json:"type"`
	Message string `json:"message" validate:"required"`
}

func (ctl *SignalWSController) handleChat(h *orch.SessionHandle, data []byte) {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		h.SendError("bad_payload")
		return
	}
	p.Message = strings.TrimSpace(p.Message)
	if err := ctl.validate.Struct(p); err != nil {
		h.SendError("empty_message")
		return
	}
	if ctl.opts.MaxMessageLen > 0 {
		if err := ctl.validate.Var(p.Message, fmt.Sprintf("max=%d", ctl.opts.MaxMessageLen)); err != nil {
			h.SendError("message_too_long")
			return
		}
	}
	if !ctl.limiter.Allow(h.Session().ID) {
		log.Warn().Str("module", "signal").Str("sid", string(h.Session().ID)).Msg("chat rate limited")
		h.SendError("rate_limited")
		return
	}
	h.OnChat(p.Message)
}

func (ctl *SignalWSController) handleTyping(h *orch.SessionHandle, data []byte) {
	var p struct {
		Type     string `json:"type"`
		IsTyping bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad typing payload")
		h.SendError("bad_payload")
		return
	}
	h.OnTyping(p.IsTyping)
}
