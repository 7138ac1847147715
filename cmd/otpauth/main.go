package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/internal/app"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/config"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal("app stopped", zap.Error(err))
	}
}
