package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	sessionName   = "RelaySessions"
	sessionKeyAPI = "api_key"
	headerAPIKey  = "X-API-Key"
)

// CORSMiddleware allows any origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+headerAPIKey)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestToken picks the caller's API key from the header, the form, or the
// login session, in that order.
func requestToken(c *gin.Context) string {
	if t := c.GetHeader(headerAPIKey); t != "" {
		return t
	}
	if t := c.PostForm("token"); t != "" {
		return t
	}
	if t, ok := sessions.Default(c).Get(sessionKeyAPI).(string); ok {
		return t
	}
	return ""
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// RequireAPIKey rejects requests that carry no valid key.
func RequireAPIKey(creds core.CredentialValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(headerAPIKey) == "" && c.ContentType() == gin.MIMEMultipartPOSTForm {
			// The key may sit in the form; an oversized body fails the parse.
			if _, err := c.MultipartForm(); tooLarge(err) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
				return
			}
		}
		token := requestToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ReasonInvalidCredential})
			return
		}
		ok, err := creds.Valid(c.Request.Context(), token)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("credential lookup")
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ReasonInvalidCredential})
			return
		}
		c.Next()
	}
}
