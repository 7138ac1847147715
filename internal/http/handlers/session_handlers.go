package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/http/middleware"
)

// SessionHandlers serves the authenticated session routes
type SessionHandlers struct {
	issuer domain.SessionIssuer
}

// NewSessionHandlers creates new session handlers
func NewSessionHandlers(issuer domain.SessionIssuer) *SessionHandlers {
	return &SessionHandlers{issuer: issuer}
}

// Current handles GET /session. It lets a client restore its signed-in
// state at startup.
func (h *SessionHandlers) Current(c *gin.Context) {
	result, ok := middleware.AuthResultFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userJSON(result.User),
		"session": gin.H{
			"id":        result.Session.ID,
			"expiresAt": result.Session.ExpiresAt.UTC().Format(time.RFC3339),
			"expiresIn": result.ExpiresIn,
		},
	})
}

// Logout handles POST /session/logout
func (h *SessionHandlers) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated"})
		return
	}

	if err := h.issuer.DestroySession(c.Request.Context(), sessionID); err != nil {
		status, msg := errorResponse(c, err)
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
