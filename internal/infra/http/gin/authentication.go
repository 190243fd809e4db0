package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	authsvc "villacove/internal/app/services/auth"
)

type AuthMiddleware struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

// RequireAdmin rejects requests without a live admin session.
func (m AuthMiddleware) RequireAdmin(c *gin.Context) {
	if m.Service == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return
	}
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return
	}
	if _, err := m.Service.Resolve(c.Request.Context(), token); err != nil {
		if errors.Is(err, authsvc.ErrSessionExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		if !errors.Is(err, authsvc.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return
	}
	c.Next()
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
