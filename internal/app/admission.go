package app

import (
	"context"
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Handshake is what a client presents when it opens a connection.
type Handshake struct {
	Token         string
	DisplayName   string
	ClientVersion string
}

// Gate turns a raw connection attempt into an admitted session. Checks run
// in a fixed order and stop at the first failure: credential, version, name.
type Gate struct {
	creds    core.CredentialValidator
	registry *Registry
	version  string
}

func NewGate(creds core.CredentialValidator, registry *Registry, serverVersion string) (*Gate, error) {
	v, err := ParseVersion(serverVersion)
	if err != nil {
		return nil, fmt.Errorf("server version: %w", err)
	}
	return &Gate{creds: creds, registry: registry, version: v}, nil
}

func (g *Gate) ServerVersion() string { return g.version }

func (g *Gate) Admit(ctx context.Context, sid domain.ConnectionID, hs Handshake) (domain.Session, error) {
	logger := log.With().Str("module", "app.admission").Str("sid", string(sid)).Logger()

	if hs.Token == "" {
		logger.Warn().Msg("rejected: missing credential")
		return domain.Session{}, domain.ErrInvalidCredential
	}
	ok, err := g.creds.Valid(ctx, hs.Token)
	if err != nil {
		logger.Error().Err(err).Msg("credential lookup failed")
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredential, err)
	}
	if !ok {
		logger.Warn().Msg("rejected: invalid credential")
		return domain.Session{}, domain.ErrInvalidCredential
	}

	if err := CheckVersion(hs.ClientVersion, g.version); err != nil {
		logger.Warn().Err(err).Str("client_version", hs.ClientVersion).Msg("rejected: version")
		return domain.Session{}, err
	}

	name, err := domain.NormalizeUsername(hs.DisplayName)
	if err != nil {
		logger.Warn().Err(err).Msg("rejected: display name")
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrNameInvalid, err)
	}
	if err := g.registry.Register(sid, name); err != nil {
		return domain.Session{}, err
	}

	logger.Info().Str("username", name).Msg("admitted")
	return domain.Session{ID: sid, Username: name}, nil
}
