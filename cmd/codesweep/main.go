package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/internal/config"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/auth"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/database"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/infrastructure/repositories"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
)

// codesweep deletes verification codes that can no longer be redeemed
func main() {
	retain := flag.Duration("retain", 24*time.Hour, "keep consumed and superseded codes this long")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.Resolve(config.DefaultPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DSN, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	codes := repositories.NewCodeRepository(db, auth.NewCodeHasher(cfg.OTP_HashCost))
	before := time.Now().Add(-*retain)
	n, err := codes.PurgeExpired(ctx, before)
	if err != nil {
		logger.Fatal("sweep failed", zap.Error(err))
	}
	logger.Info("sweep completed", zap.Int64("deleted", n), zap.Time("before", before))
}
