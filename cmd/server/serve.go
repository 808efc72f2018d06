package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/Relay/internal/adapters/credentials"
	router "github.com/dkeye/Relay/internal/adapters/http"
	"github.com/dkeye/Relay/internal/adapters/transcode"
	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("cannot create upload directory")
	}

	creds, err := credentials.Open(ctx, cfg.Credentials)
	if err != nil {
		return fmt.Errorf("open credentials: %w", err)
	}
	defer creds.Close()
	if creds.Len() == 0 {
		log.Warn().Str("backend", cfg.Credentials.Backend).Msg("no API keys configured, every handshake will be refused; run `relay keygen`")
	}

	transcoder, err := transcode.New(cfg.Transcoder)
	if err != nil {
		return fmt.Errorf("transcoder: %w", err)
	}

	registry := app.NewRegistry()
	gate, err := app.NewGate(creds, registry, cfg.ServerVersion)
	if err != nil {
		return err
	}
	o := orch.New(ctx, gate, registry, app.PolicyByName(cfg.BackpressurePolicy), cfg.TypingTimeout)

	r := router.SetupRouter(ctx, cfg, o, creds, transcoder)
	addr := fmt.Sprintf(":%d", cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.Info().Str("addr", ln.Addr().String()).Str("version", gate.ServerVersion()).Msg("Relay server started")

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			return err
		}
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
