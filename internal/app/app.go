package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/internal/config"
	httpx "github.com/sharmarobin1121-cmyk/yikyak2/internal/http"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/http/handlers"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/http/middleware"
)

const shutdownTimeout = 15 * time.Second

// Router builds the HTTP handler for a fully initialized container
func (c *Container) Router() *gin.Engine {
	return httpx.BuildRouter(httpx.RouterDeps{
		Verification:   handlers.NewVerificationHandlers(c.VerificationSvc, c.Logger),
		Sessions:       handlers.NewSessionHandlers(c.SessionIssuer),
		Auth:           middleware.AuthMiddleware(c.SessionIssuer),
		Casbin:         middleware.NewCasbinMW(c.Casbin, c.Logger),
		Metrics:        c.Metrics,
		Logger:         c.Logger,
		AllowedOrigins: c.Config.CORSOrigins,
		HealthChecks: map[string]httpx.HealthCheck{
			"postgres": c.pingDB,
			"redis":    c.pingRedis,
		},
	})
}

func (c *Container) pingDB(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.Config.StorageTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (c *Container) pingRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Config.StorageTimeout)
	defer cancel()
	return c.RedisClient.Ping(ctx).Err()
}

// Run starts the service and blocks until SIGINT/SIGTERM
func Run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer c.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
