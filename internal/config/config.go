package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultGRPCPort        = 50051
	defaultWindowSize      = 50
	defaultTestDuration    = 5 * time.Second
	defaultSummaryCacheTTL = 10 * time.Minute
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	GRPCPort              int
	GRPCReflectionEnabled bool
	GRPCLoggingEnabled    bool
	LogDir                string

	PrecisionWindowSize   int
	PrecisionTestDuration time.Duration
	SummaryCacheTTL       time.Duration
}

// LoadFromEnv loads configuration from environment variables. Values that do
// not parse fall back to their defaults.
func LoadFromEnv() *Config {
	port := getEnvInt("GRPC_PORT", defaultGRPCPort)
	if port < 1 || port > 65535 {
		port = defaultGRPCPort
	}

	windowSize := getEnvInt("PRECISION_WINDOW_SIZE", defaultWindowSize)
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}

	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/database.db"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		GRPCPort:              port,
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		GRPCLoggingEnabled:    getEnvBool("GRPC_LOGGING_ENABLED", true),
		LogDir:                os.Getenv("LOG_DIR"),
		PrecisionWindowSize:   windowSize,
		PrecisionTestDuration: getEnvDuration("PRECISION_TEST_DURATION", defaultTestDuration),
		SummaryCacheTTL:       getEnvDuration("SUMMARY_CACHE_TTL", defaultSummaryCacheTTL),
	}
}

// NewLogger creates a new Zap logger based on the config. When LogDir is set
// the console output is tee'd into a rotating JSON log file.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.AppEnv == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil || cfg.LogDir == "" {
		return logger, err
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, err
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, "gaze-server.log"),
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}),
		zap.InfoLevel,
	)

	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
