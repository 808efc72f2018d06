// Package credentials holds the API key stores behind the handshake and
// upload checks.
package credentials

import (
	"context"
	"fmt"

	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
)

// Store validates, issues and persists API keys.
type Store interface {
	core.CredentialValidator
	core.KeyIssuer
	Len() int
	Close() error
}

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.CredentialsConfig) (Store, error) {
	switch cfg.Backend {
	case "file":
		return OpenFileStore(cfg.Path)
	case "badger":
		s, err := OpenBadgerStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		if cfg.Import != "" {
			if _, err := s.ImportFile(ctx, cfg.Import); err != nil {
				s.Close()
				return nil, fmt.Errorf("import api keys: %w", err)
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, cfg.Backend)
	}
}
