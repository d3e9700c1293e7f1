package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func clientAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}

func logResult(logger *zap.Logger, method string, start time.Time, err error) {
	duration := time.Since(start)
	if err != nil {
		st, _ := status.FromError(err)
		logger.Error("gRPC request failed",
			zap.String("method", method),
			zap.Duration("duration", duration),
			zap.String("status_code", st.Code().String()),
			zap.String("status_message", st.Message()),
			zap.Error(err))
		return
	}
	logger.Info("gRPC request completed",
		zap.String("method", method),
		zap.Duration("duration", duration),
		zap.String("status_code", codes.OK.String()))
}

// LoggingInterceptor creates a gRPC unary interceptor for request/response logging.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		logger.Debug("gRPC request started",
			zap.String("method", info.FullMethod),
			zap.String("client_addr", clientAddr(ctx)))

		resp, err := handler(ctx, req)
		logResult(logger, info.FullMethod, start, err)
		return resp, err
	}
}

// StreamLoggingInterceptor logs each stream once it ends.
func StreamLoggingInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		logger.Debug("gRPC stream started",
			zap.String("method", info.FullMethod),
			zap.String("client_addr", clientAddr(ss.Context())))

		err := handler(srv, ss)
		logResult(logger, info.FullMethod, start, err)
		return err
	}
}
