package app

import (
	"testing"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		client  string
		server  string
		wantErr error
	}{
		{"patch difference is compatible", "1.2.7", "1.2.0", nil},
		{"exact match", "1.0.0", "1.0.3", nil},
		{"leading v accepted", "v1.2.3", "1.2.0", nil},
		{"pre-release accepted", "1.2.3-beta.1", "1.2.0", nil},
		{"build metadata accepted", "1.2.3+sha.abc", "1.2.0", nil},
		{"minor mismatch", "1.3.0", "1.2.9", domain.ErrVersionMismatch},
		{"major mismatch", "2.2.0", "1.2.0", domain.ErrVersionMismatch},
		{"garbage", "notaversion", "1.2.0", domain.ErrVersionInvalid},
		{"missing", "", "1.2.0", domain.ErrVersionInvalid},
		{"shorthand rejected", "1.2", "1.2.0", domain.ErrVersionInvalid},
		{"leading zero rejected", "01.2.0", "1.2.0", domain.ErrVersionInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersion(tt.client, tt.server)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseVersion_Normalizes(t *testing.T) {
	v, err := ParseVersion(" 1.4.2 ")
	require.NoError(t, err)
	require.Equal(t, "v1.4.2", v)
}
