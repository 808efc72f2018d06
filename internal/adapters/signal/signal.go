package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Options tunes the per-connection transport.
type Options struct {
	ReadLimit     int64
	PingPeriod    time.Duration
	WriteWait     time.Duration
	SendBuffer    int
	MaxMessageLen int
	RateLimit     int
	RateInterval  time.Duration
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	opts     Options
	limiter  *ChatRateLimiter
	validate *validator.Validate
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 5 * time.Second
	}
	return &SignalWSController{
		Orch:     o,
		opts:     opts,
		limiter:  NewChatRateLimiter(opts.RateLimit, opts.RateInterval),
		validate: validator.New(),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatusFor maps a handshake rejection to the HTTP status of the refused
// upgrade.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrVersionMismatch):
		return http.StatusUpgradeRequired
	case errors.Is(err, domain.ErrVersionInvalid), errors.Is(err, domain.ErrNameInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNameTaken):
		return http.StatusConflict
	default:
		return http.StatusUnauthorized
	}
}

// HandleSignal admits the client before upgrading. A rejected handshake
// never becomes a WebSocket; the client gets the reason as JSON.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.ConnectionID(uuid.NewString())
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("X-API-Key")
	}
	hs := app.Handshake{
		Token:         token,
		DisplayName:   c.Query("displayName"),
		ClientVersion: c.Query("clientVersion"),
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", hs.DisplayName).Msg("new WS connection")

	handle, err := ctl.Orch.Admit(c.Request.Context(), sid, hs)
	if err != nil {
		c.AbortWithStatusJSON(StatusFor(err), gin.H{"error": domain.Reason(err)})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("ws upgrade")
		ctl.Orch.Release(sid)
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	ctx, cancel := context.WithCancel(ctx)
	handle.Attach(conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, handle, conn)
}
