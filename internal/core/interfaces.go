//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
package core

import "context"

// CredentialValidator checks an opaque API token against the known-valid set.
type CredentialValidator interface {
	Valid(ctx context.Context, token string) (bool, error)
}

// KeyIssuer creates and persists a new API token.
type KeyIssuer interface {
	Generate(ctx context.Context) (string, error)
}

// Transcoder converts an uploaded file into its delivery format and returns
// the path of the produced file.
type Transcoder interface {
	Transcode(ctx context.Context, srcPath string) (string, error)
}
