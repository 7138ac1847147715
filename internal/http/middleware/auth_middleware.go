package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// Context keys set by AuthMiddleware
const (
	UserIDKey     = "user_id"
	UserRoleKey   = "user_role"
	SessionIDKey  = "session_id"
	AuthResultKey = "auth_result"
)

// AuthMiddleware resolves the bearer token to a live session
func AuthMiddleware(issuer domain.SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required"})
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") || tokenParts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid authorization header format"})
			return
		}

		result, err := issuer.GetCurrentSession(c.Request.Context(), tokenParts[1])
		if err != nil {
			status, msg := http.StatusUnauthorized, "Session invalid or expired"
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				msg = "Token expired"
			case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
				msg = "Invalid token"
			case errors.Is(err, domain.ErrStorageUnavailable):
				status, msg = http.StatusServiceUnavailable, "Service temporarily unavailable"
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
			return
		}

		c.Set(UserIDKey, result.User.ID)
		c.Set(UserRoleKey, result.User.Role)
		c.Set(SessionIDKey, result.Session.ID)
		c.Set(AuthResultKey, result)
		c.Next()
	}
}

// AuthResultFrom returns the session resolved by AuthMiddleware
func AuthResultFrom(c *gin.Context) (*domain.AuthResult, bool) {
	value, ok := c.Get(AuthResultKey)
	if !ok {
		return nil, false
	}
	result, ok := value.(*domain.AuthResult)
	return result, ok
}
