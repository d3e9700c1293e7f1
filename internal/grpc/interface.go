package grpc

import (
	"context"
	"time"

	"github.com/godilite/gaze-server/internal/precision"
	"github.com/godilite/gaze-server/internal/service"
	"github.com/godilite/gaze-server/internal/session"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type PrecisionService interface {
	StartTest(ctx context.Context, sessionID string, target precision.CalibrationTarget, vp precision.Viewport) (service.TestInfo, error)
	RecordPrediction(ctx context.Context, sessionID string, p precision.GazePoint) error
	FinishTest(ctx context.Context, sessionID string) (service.TestResult, error)
	GetSessionSummary(ctx context.Context, sessionID string) (service.SessionSummary, error)
	ActiveTest(sessionID string) (service.TestInfo, bool)
	ListResults(ctx context.Context, sessionID string) ([]service.TestResult, error)
}

type SessionManager interface {
	Authenticate(h session.Handshake) (session.Session, bool, error)
	Disconnect(id string) error
	Sessions() []session.Session
}
