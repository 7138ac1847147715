package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
)

// Authorizer decides whether a role may call a route
type Authorizer interface {
	Allowed(role, obj, act string) (bool, error)
}

// CasbinMW enforces role policies on authenticated routes
type CasbinMW struct {
	authorizer Authorizer
	logger     *zap.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(authorizer Authorizer, logger *zap.Logger) *CasbinMW {
	return &CasbinMW{authorizer: authorizer, logger: logging.OrNop(logger)}
}

// Enforce returns the casbin authorization middleware. It must run after AuthMiddleware.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(UserRoleKey)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated"})
			return
		}

		// Match against the route pattern, not the raw path
		obj := c.FullPath()
		if obj == "" {
			obj = c.Request.URL.Path
		}

		allowed, err := mw.authorizer.Allowed(role, obj, c.Request.Method)
		if err != nil {
			mw.logger.Error("authorization check failed", zap.String("route", obj), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Authorization check failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
			return
		}
		c.Next()
	}
}
