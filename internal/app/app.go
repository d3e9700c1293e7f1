package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	pb "github.com/godilite/gaze-server/api/v1"
	"github.com/godilite/gaze-server/internal/config"
	handler "github.com/godilite/gaze-server/internal/grpc"
	"github.com/godilite/gaze-server/internal/repository"
	"github.com/godilite/gaze-server/internal/service"
	"github.com/godilite/gaze-server/internal/session"
	"github.com/godilite/gaze-server/pkg/cache"
	dbbuilder "github.com/godilite/gaze-server/pkg/database"
	grpcsrv "github.com/godilite/gaze-server/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	precision  *service.PrecisionService
	grpcServer *grpcsrv.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithInitStatements(dbbuilder.SQLitePragmas...),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	resultRepo := repository.NewPrecisionResultRepository(dbPool)
	if err := resultRepo.Migrate(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	// The summary cache is optional; without redis every summary is read
	// from the database.
	var cacher handler.Cacher
	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithKeyPrefix("gaze:"),
	)
	if err != nil {
		logger.Warn("Cache unavailable, serving summaries uncached",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		cacher = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	sessions := session.NewAuthenticator(session.NewStore(), logger)

	precisionService := service.NewPrecisionService(resultRepo, sessions, logger,
		service.WithWindowSize(cfg.PrecisionWindowSize),
		service.WithTestDuration(cfg.PrecisionTestDuration),
	)

	grpcHandlers := handler.NewGRPCHandlers(precisionService, sessions, cacher, logger, cfg.SummaryCacheTTL)
	precisionService.OnResult(grpcHandlers.ResultStored)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(cfg.GRPCLoggingEnabled),
	)
	if err != nil {
		if cacheClient != nil {
			_ = cacheClient.Close()
		}
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterService(pb.GazePrecision_ServiceName, func(s *grpc.Server) {
		pb.RegisterGazePrecisionServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		precision:  precisionService,
		grpcServer: grpcServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Warn("gRPC shutdown did not complete gracefully", zap.Error(err))
	}

	a.precision.Close()

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")

	_ = a.logger.Sync()
	return nil
}
