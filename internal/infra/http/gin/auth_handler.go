package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	authsvc "villacove/internal/app/services/auth"
)

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	token, err := h.Service.Login(c.Request.Context(), strings.TrimSpace(req.User), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case errors.Is(err, authsvc.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login is not configured"})
		default:
			if h.Logger != nil {
				h.Logger.Error("login failed", "error", err)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h AuthHandler) Logout(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return
	}
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token != "" {
		h.Service.Logout(c.Request.Context(), token)
	}
	c.Status(http.StatusNoContent)
}

var _ AuthHTTP = AuthHandler{}
