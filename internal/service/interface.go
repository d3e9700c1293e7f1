package service

import (
	"context"

	"github.com/godilite/gaze-server/internal/repository/models"
	"github.com/godilite/gaze-server/internal/session"
)

// ResultRepository defines the storage operations the service needs.
type ResultRepository interface {
	SaveResult(ctx context.Context, res models.PrecisionResult) (int64, error)
	GetResultsBySession(ctx context.Context, sessionID string) ([]models.PrecisionResult, error)
	GetTargetSummaries(ctx context.Context, sessionID string) ([]models.TargetSummary, error)
}

// SessionLookup resolves the classroom session that owns a test.
type SessionLookup interface {
	Lookup(id string) (session.Session, error)
}
