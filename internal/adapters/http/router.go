package http

import (
	"context"

	"github.com/dkeye/Relay/internal/adapters/signal"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, creds core.CredentialValidator, transcoder core.Transcoder) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions(sessionName, store))

	r.Static("/static", cfg.StaticPath)
	r.Static(cfg.PublicUploadPrefix, cfg.UploadDir)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Str("uploads", cfg.UploadDir).Msg("router setup")

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:     cfg.ReadLimit,
		PingPeriod:    cfg.PingPeriod,
		WriteWait:     cfg.WriteWait,
		SendBuffer:    cfg.SendBuffer,
		MaxMessageLen: cfg.Chat.MaxMessageLen,
		RateLimit:     cfg.Chat.RateLimit,
		RateInterval:  cfg.Chat.RateInterval,
	})
	upload := &UploadHandler{
		Transcoder:      transcoder,
		Publisher:       o,
		Dir:             cfg.UploadDir,
		PublicPrefix:    cfg.PublicUploadPrefix,
		DefaultDuration: cfg.DefaultDisplayDuration,
	}

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})
	api.GET("/health", handleHealth(o, cfg.ServerVersion))
	api.GET("/users", handleUsers(o))
	api.POST("/login", handleLogin(creds))
	api.POST("/logout", handleLogout)
	api.POST("/upload", LimitBody(cfg.MaxUploadBytes), RequireAPIKey(creds), upload.Handle)

	return r
}
