package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Publisher hands a transcoded item to the display queue.
type Publisher interface {
	Publish(item domain.MediaItem)
}

type UploadHandler struct {
	Transcoder      core.Transcoder
	Publisher       Publisher
	Dir             string
	PublicPrefix    string
	DefaultDuration time.Duration
}

type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// ParseDisplayDuration reads an integer or fractional millisecond count, or
// a Go duration string. Empty input yields def.
func ParseDisplayDuration(raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	var d time.Duration
	if ms, err := strconv.ParseFloat(raw, 64); err == nil {
		d = time.Duration(ms * float64(time.Millisecond))
	} else if parsed, err := time.ParseDuration(raw); err == nil {
		d = parsed
	} else {
		return 0, fmt.Errorf("%w: %q", domain.ErrBadDuration, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative %q", domain.ErrBadDuration, raw)
	}
	return d, nil
}

// LimitBody caps the request body; it must run before anything parses the
// form.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func (h *UploadHandler) Handle(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		_ = c.Error(fmt.Errorf("%w: %w", domain.ErrNoFile, err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	dur, err := ParseDisplayDuration(c.PostForm("displayDuration"), h.DefaultDuration)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid display duration"})
		return
	}

	dst := filepath.Join(h.Dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving file"})
		return
	}

	mt, err := mimetype.DetectFile(dst)
	if err != nil || !strings.HasPrefix(mt.String(), "image/") {
		_ = os.Remove(dst)
		_ = c.Error(domain.ErrNotImage)
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only image files are allowed"})
		return
	}

	// The uploader may hang up mid-transcode; the image still goes out.
	out, err := h.Transcoder.Transcode(context.WithoutCancel(c.Request.Context()), dst)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("file", dst).Msg("transcode")
		_ = os.Remove(dst)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error transcoding image"})
		return
	}

	locator := path.Join(h.PublicPrefix, filepath.Base(out))
	h.Publisher.Publish(domain.MediaItem{
		Locator:         locator,
		DisplayDuration: dur,
		Uploader:        strings.TrimSpace(c.PostForm("displayName")),
	})
	log.Info().Str("module", "adapters.http").Str("locator", locator).Dur("duration", dur).Msg("image queued")

	c.JSON(http.StatusOK, UploadResponse{ImageURL: locator})
}
