package http

import (
	"net/http"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Status is the subset of the orchestrator the read-only endpoints need.
type Status interface {
	Roster() []string
	Connections() int
	Pending() int
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
	Queued   int    `json:"queued"`
}

type UsersResponse struct {
	Users []string `json:"users"`
}

type LoginRequest struct {
	Token string `json:"token" binding:"required"`
}

func handleHealth(st Status, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  version,
			Sessions: st.Connections(),
			Queued:   st.Pending(),
		})
	}
}

func handleUsers(st Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, UsersResponse{Users: st.Roster()})
	}
}

func handleLogin(creds core.CredentialValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
			return
		}
		ok, err := creds.Valid(c.Request.Context(), req.Token)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("login lookup")
		}
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ReasonInvalidCredential})
			return
		}
		s := sessions.Default(c)
		s.Set(sessionKeyAPI, req.Token)
		if err := s.Save(); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleLogout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	_ = s.Save()
	c.Status(http.StatusNoContent)
}
