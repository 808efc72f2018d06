package main

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_RunServe_PortInUse(t *testing.T) {
	// Given a port another listener already holds
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer taken.Close()
	port := taken.Addr().(*net.TCPAddr).Port

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("RELAY_PORT", strconv.Itoa(port))
	t.Setenv("RELAY_TRANSCODER_KIND", "none")
	t.Setenv("RELAY_CREDENTIALS_PATH", filepath.Join(dir, "api_keys.json"))
	t.Setenv("RELAY_UPLOAD_DIR", filepath.Join(dir, "uploads"))
	serveCmd.SetContext(context.Background())

	// When
	err = runServe(serveCmd, nil)

	// Then
	require.Error(t, err)
	require.Contains(t, err.Error(), "listen")
}
