package main

import (
	"context"
	"log"

	"github.com/godilite/gaze-server/internal/app"
	"github.com/godilite/gaze-server/internal/config"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.LoadFromEnv()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("env", cfg.AppEnv),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("window_size", cfg.PrecisionWindowSize),
		zap.Duration("test_duration", cfg.PrecisionTestDuration))

	application, err := app.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		logger.Fatal("Application exited with error", zap.Error(err))
	}
}
