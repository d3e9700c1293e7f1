package mocks

import (
	"context"
	"errors"

	"github.com/godilite/gaze-server/internal/repository/models"
	"github.com/godilite/gaze-server/internal/session"
)

// MockResultRepository is a mock implementation of the ResultRepository interface
// for testing the service layer.
type MockResultRepository struct {
	SaveResultFunc          func(ctx context.Context, res models.PrecisionResult) (int64, error)
	GetResultsBySessionFunc func(ctx context.Context, sessionID string) ([]models.PrecisionResult, error)
	GetTargetSummariesFunc  func(ctx context.Context, sessionID string) ([]models.TargetSummary, error)
}

// SaveResult implements the ResultRepository interface
func (m *MockResultRepository) SaveResult(ctx context.Context, res models.PrecisionResult) (int64, error) {
	if m.SaveResultFunc != nil {
		return m.SaveResultFunc(ctx, res)
	}
	return 0, errors.New("SaveResultFunc not implemented")
}

// GetResultsBySession implements the ResultRepository interface
func (m *MockResultRepository) GetResultsBySession(ctx context.Context, sessionID string) ([]models.PrecisionResult, error) {
	if m.GetResultsBySessionFunc != nil {
		return m.GetResultsBySessionFunc(ctx, sessionID)
	}
	return nil, errors.New("GetResultsBySessionFunc not implemented")
}

// GetTargetSummaries implements the ResultRepository interface
func (m *MockResultRepository) GetTargetSummaries(ctx context.Context, sessionID string) ([]models.TargetSummary, error) {
	if m.GetTargetSummariesFunc != nil {
		return m.GetTargetSummariesFunc(ctx, sessionID)
	}
	return nil, errors.New("GetTargetSummariesFunc not implemented")
}

// MockSessionLookup resolves every ID listed in Known.
type MockSessionLookup struct {
	Known map[string]session.Session
}

func (m *MockSessionLookup) Lookup(id string) (session.Session, error) {
	if sess, ok := m.Known[id]; ok {
		return sess, nil
	}
	return session.Session{}, session.ErrSessionNotFound
}
