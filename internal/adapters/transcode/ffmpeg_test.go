package transcode

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg writes a shell script that behaves like ffmpeg for our
// argument list: it writes to the last argument.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor a; do last=$a; done\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestFFmpeg_Transcode_Success(t *testing.T) {
	req := require.New(t)
	bin := fakeFFmpeg(t, `[ "$1" = "-version" ] && exit 0
printf avif > "$last"`)
	src := filepath.Join(t.TempDir(), "photo.png")
	req.NoError(os.WriteFile(src, []byte("png"), 0o644))

	dst, err := NewFFmpeg(config.TranscoderConfig{FFmpegPath: bin, CRF: 40, CPUUsed: 6}).Transcode(context.Background(), src)

	req.NoError(err)
	req.Equal(filepath.Join(filepath.Dir(src), "photo.avif"), dst)
	out, err := os.ReadFile(dst)
	req.NoError(err)
	req.Equal("avif", string(out))
	req.NoFileExists(src)
}

func TestFFmpeg_Transcode_Failure(t *testing.T) {
	req := require.New(t)
	bin := fakeFFmpeg(t, `printf partial > "$last"
echo "Invalid data found" >&2
exit 1`)
	src := filepath.Join(t.TempDir(), "photo.png")
	req.NoError(os.WriteFile(src, []byte("png"), 0o644))

	_, err := NewFFmpeg(config.TranscoderConfig{FFmpegPath: bin}).Transcode(context.Background(), src)

	req.ErrorIs(err, domain.ErrTranscode)
	req.Contains(err.Error(), "Invalid data found")
	req.FileExists(src)
	req.NoFileExists(filepath.Join(filepath.Dir(src), "photo.avif"))
}

func TestFFmpeg_Transcode_AvifInput(t *testing.T) {
	req := require.New(t)
	bin := fakeFFmpeg(t, `printf avif > "$last"`)
	src := filepath.Join(t.TempDir(), "photo.avif")
	req.NoError(os.WriteFile(src, []byte("old"), 0o644))

	dst, err := NewFFmpeg(config.TranscoderConfig{FFmpegPath: bin}).Transcode(context.Background(), src)

	req.NoError(err)
	req.Equal(filepath.Join(filepath.Dir(src), "photo-t.avif"), dst)
}

func TestNew(t *testing.T) {
	req := require.New(t)

	tr, err := New(config.TranscoderConfig{Kind: "none"})
	req.NoError(err)
	req.IsType(Passthrough{}, tr)

	_, err = New(config.TranscoderConfig{Kind: "ffmpeg", FFmpegPath: filepath.Join(t.TempDir(), "missing")})
	req.Error(err)

	_, err = New(config.TranscoderConfig{Kind: "sharp"})
	req.ErrorIs(err, config.ErrInvalidKind)
}

func TestPassthrough(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	dst, err := Passthrough{}.Transcode(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, src, dst)

	_, err = Passthrough{}.Transcode(context.Background(), src+".gone")
	require.ErrorIs(t, err, domain.ErrTranscode)
}
