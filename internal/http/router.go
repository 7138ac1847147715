package httpx

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/internal/http/handlers"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/http/middleware"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/metrics"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// RouterDeps collects everything BuildRouter wires
type RouterDeps struct {
	Verification   *handlers.VerificationHandlers
	Sessions       *handlers.SessionHandlers
	Auth           gin.HandlerFunc
	Casbin         *middleware.CasbinMW
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
	HealthChecks   map[string]HealthCheck
}

func BuildRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(d.AllowedOrigins), middleware.RequestLogger(d.Logger, d.Metrics))

	r.GET("/health", health(d.HealthChecks, d.Logger))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	verification := r.Group("/verification")
	verification.POST("/send", d.Verification.SendCode)
	verification.POST("/redeem", d.Verification.Redeem)

	session := r.Group("/session").Use(d.Auth, d.Casbin.Enforce())
	session.GET("", d.Sessions.Current)
	session.POST("/logout", d.Sessions.Logout)

	return r
}

func health(checks map[string]HealthCheck, logger *zap.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger).Named("health")
	return func(c *gin.Context) {
		status := http.StatusOK
		deps := gin.H{}
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				logger.Warn("dependency check failed", zap.String("dependency", name), zap.Error(err))
				deps[name] = "unavailable"
				continue
			}
			deps[name] = "ok"
		}
		c.JSON(status, gin.H{"ok": status == http.StatusOK, "dependencies": deps})
	}
}
