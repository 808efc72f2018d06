// Package transcode converts uploaded images into the format shown to viewers.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// FFmpeg encodes a still image to AVIF with libaom.
type FFmpeg struct {
	Bin     string
	CRF     int
	CPUUsed int
}

func NewFFmpeg(cfg config.TranscoderConfig) *FFmpeg {
	return &FFmpeg{Bin: cfg.FFmpegPath, CRF: cfg.CRF, CPUUsed: cfg.CPUUsed}
}

// CheckInstallation verifies the ffmpeg binary runs.
func CheckInstallation(bin string) error {
	if err := exec.Command(bin, "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}
	return nil
}

// Transcode writes <src without ext>.avif next to src and removes src on
// success. A failed run leaves src in place and no partial output.
func (f *FFmpeg) Transcode(ctx context.Context, src string) (string, error) {
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".avif"
	if dst == src {
		dst = strings.TrimSuffix(src, ".avif") + "-t.avif"
	}

	cmd := exec.CommandContext(ctx, f.Bin,
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", src,
		"-frames:v", "1",
		"-c:v", "libaom-av1",
		"-still-picture", "1",
		"-crf", strconv.Itoa(f.CRF),
		"-cpu-used", strconv.Itoa(f.CPUUsed),
		dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: ffmpeg: %w: %s", domain.ErrTranscode, err, strings.TrimSpace(stderr.String()))
	}
	if err := os.Remove(src); err != nil {
		log.Warn().Err(err).Str("module", "transcode").Str("src", src).Msg("remove original")
	}
	log.Debug().Str("module", "transcode").Str("dst", dst).Msg("transcoded")
	return dst, nil
}

// Passthrough serves the upload as is.
type Passthrough struct{}

func (Passthrough) Transcode(_ context.Context, src string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranscode, err)
	}
	return src, nil
}

// New picks the transcoder for cfg.Kind and checks that it can run.
func New(cfg config.TranscoderConfig) (core.Transcoder, error) {
	switch cfg.Kind {
	case "none":
		return Passthrough{}, nil
	case "ffmpeg":
		if err := CheckInstallation(cfg.FFmpegPath); err != nil {
			return nil, err
		}
		return NewFFmpeg(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidKind, cfg.Kind)
	}
}
