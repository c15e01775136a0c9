package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reseller_hub/internal/auth"
	"reseller_hub/internal/redis"
)

const sessionContextKey = "session"

// Authenticator is the part of the auth service the HTTP layer needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*redis.SessionData, error)
	Current(ctx context.Context, sessionID string) (*redis.SessionData, error)
	SignOut(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet(sessionContextKey))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := c.MustGet(sessionContextKey).(*redis.SessionData)
	if err := h.auth.SignOut(c.Request.Context(), session.SessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

// RequireSession admits requests carrying a live "Authorization: Bearer
// <session-id>" header and answers everything else with login_required.
func (h *AuthHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		sessionID, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(sessionID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login_required"})
			return
		}

		session, err := h.auth.Current(c.Request.Context(), strings.TrimSpace(sessionID))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

var _ Authenticator = (*auth.Service)(nil)
