package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/audit"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/config"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/auth"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/database"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/notifications"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/ratelimit"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/repositories"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/metrics"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/phone"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService
	Metrics     *metrics.Metrics

	// Repositories
	CodeRepo    *repositories.CodeRepositoryImpl
	UserRepo    domain.UserRepository
	SessionRepo domain.SessionRepository

	// Services
	Hasher          domain.CodeHasher
	TokenSvc        domain.TokenService
	Sender          domain.SMSSender
	SendLimiter     domain.Limiter
	RedeemLimiter   domain.Limiter
	Audit           domain.AuditLogger
	SessionIssuer   *services.SessionIssuerImpl
	VerificationSvc *services.VerificationServiceImpl
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	casbin, err := auth.NewCasbinService(c.DB, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Casbin = casbin

	c.initRepositories()
	if err := c.initServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN, c.Logger)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rdb := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	c.RedisClient = rdb.Client
	return rdb.Ping(ctx, c.Config.StorageTimeout)
}

func (c *Container) initRepositories() {
	c.Hasher = auth.NewCodeHasher(c.Config.OTP_HashCost)
	c.CodeRepo = repositories.NewCodeRepository(c.DB, c.Hasher)
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, c.Config.SessionTTL)
}

func (c *Container) initServices() error {
	normalizer, err := phone.NewNormalizer(c.Config.DefaultCountryCode)
	if err != nil {
		return fmt.Errorf("phone normalizer: %w", err)
	}

	c.Metrics = metrics.New()
	c.Audit = audit.NewZapAuditLogger(c.Logger)
	c.TokenSvc = auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTIssuer, c.Config.SessionTTL)
	c.Sender = notifications.NewTwilioSender(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Config.OTP_TTL,
		c.Logger,
	)

	c.SendLimiter = ratelimit.NewRedisLimiter(c.RedisClient, ratelimit.Config{
		Prefix:   "otp:send",
		Limit:    c.Config.OTP_MaxSends,
		Window:   c.Config.OTP_SendWindow,
		Cooldown: c.Config.OTP_ResendCooldown,
	})
	// Redeem attempts are counted per code lifetime
	c.RedeemLimiter = ratelimit.NewRedisLimiter(c.RedisClient, ratelimit.Config{
		Prefix: "otp:redeem",
		Limit:  c.Config.OTP_MaxAttempts,
		Window: c.Config.OTP_TTL,
	})

	c.SessionIssuer = services.NewSessionIssuer(
		c.UserRepo,
		c.SessionRepo,
		c.TokenSvc,
		c.Audit,
		c.Metrics,
		c.Logger,
		c.Config.StorageTimeout,
	)

	c.VerificationSvc = services.NewVerificationService(services.VerificationDeps{
		Normalizer:    normalizer,
		Codes:         c.CodeRepo,
		Hasher:        c.Hasher,
		Sender:        c.Sender,
		Issuer:        c.SessionIssuer,
		SendLimiter:   c.SendLimiter,
		RedeemLimiter: c.RedeemLimiter,
		Audit:         c.Audit,
		Metrics:       c.Metrics,
		Logger:        c.Logger,
	}, services.VerificationConfig{
		CodeTTL:            c.Config.OTP_TTL,
		InvalidatePrevious: c.Config.OTP_InvalidatePrev,
		StorageTimeout:     c.Config.StorageTimeout,
		DeliveryTimeout:    c.Config.DeliveryTimeout,
	})
	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
