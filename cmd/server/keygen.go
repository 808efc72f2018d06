package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/Relay/internal/adapters/credentials"
	"github.com/dkeye/Relay/internal/config"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Issue a new API key and print it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg)

		store, err := credentials.Open(cmd.Context(), cfg.Credentials)
		if err != nil {
			return fmt.Errorf("open credentials: %w", err)
		}
		defer store.Close()

		key, err := store.Generate(cmd.Context())
		if err != nil {
			return err
		}
		log.Info().Str("backend", cfg.Credentials.Backend).Int("keys", store.Len()).Msg("API key issued")
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}
