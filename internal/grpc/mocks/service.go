package mocks

import (
	"context"
	"errors"

	"github.com/godilite/gaze-server/internal/precision"
	"github.com/godilite/gaze-server/internal/service"
	"github.com/godilite/gaze-server/internal/session"
)

// MockPrecisionService is a mock implementation of the PrecisionService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockPrecisionService struct {
	StartTestFunc         func(ctx context.Context, sessionID string, target precision.CalibrationTarget, vp precision.Viewport) (service.TestInfo, error)
	RecordPredictionFunc  func(ctx context.Context, sessionID string, p precision.GazePoint) error
	FinishTestFunc        func(ctx context.Context, sessionID string) (service.TestResult, error)
	GetSessionSummaryFunc func(ctx context.Context, sessionID string) (service.SessionSummary, error)
	ActiveTestFunc        func(sessionID string) (service.TestInfo, bool)
	ListResultsFunc       func(ctx context.Context, sessionID string) ([]service.TestResult, error)
}

// StartTest implements the PrecisionService interface
func (m *MockPrecisionService) StartTest(ctx context.Context, sessionID string, target precision.CalibrationTarget, vp precision.Viewport) (service.TestInfo, error) {
	if m.StartTestFunc != nil {
		return m.StartTestFunc(ctx, sessionID, target, vp)
	}
	return service.TestInfo{}, errors.New("StartTestFunc not implemented")
}

// RecordPrediction implements the PrecisionService interface
func (m *MockPrecisionService) RecordPrediction(ctx context.Context, sessionID string, p precision.GazePoint) error {
	if m.RecordPredictionFunc != nil {
		return m.RecordPredictionFunc(ctx, sessionID, p)
	}
	return errors.New("RecordPredictionFunc not implemented")
}

// FinishTest implements the PrecisionService interface
func (m *MockPrecisionService) FinishTest(ctx context.Context, sessionID string) (service.TestResult, error) {
	if m.FinishTestFunc != nil {
		return m.FinishTestFunc(ctx, sessionID)
	}
	return service.TestResult{}, errors.New("FinishTestFunc not implemented")
}

// GetSessionSummary implements the PrecisionService interface
func (m *MockPrecisionService) GetSessionSummary(ctx context.Context, sessionID string) (service.SessionSummary, error) {
	if m.GetSessionSummaryFunc != nil {
		return m.GetSessionSummaryFunc(ctx, sessionID)
	}
	return service.SessionSummary{}, errors.New("GetSessionSummaryFunc not implemented")
}

// ActiveTest implements the PrecisionService interface
func (m *MockPrecisionService) ActiveTest(sessionID string) (service.TestInfo, bool) {
	if m.ActiveTestFunc != nil {
		return m.ActiveTestFunc(sessionID)
	}
	return service.TestInfo{}, false
}

// ListResults implements the PrecisionService interface
func (m *MockPrecisionService) ListResults(ctx context.Context, sessionID string) ([]service.TestResult, error) {
	if m.ListResultsFunc != nil {
		return m.ListResultsFunc(ctx, sessionID)
	}
	return nil, errors.New("ListResultsFunc not implemented")
}

// MockSessionManager is a mock implementation of the SessionManager interface.
type MockSessionManager struct {
	AuthenticateFunc func(h session.Handshake) (session.Session, bool, error)
	DisconnectFunc   func(id string) error
	SessionsFunc     func() []session.Session
}

func (m *MockSessionManager) Authenticate(h session.Handshake) (session.Session, bool, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(h)
	}
	return session.Session{}, false, errors.New("AuthenticateFunc not implemented")
}

func (m *MockSessionManager) Disconnect(id string) error {
	if m.DisconnectFunc != nil {
		return m.DisconnectFunc(id)
	}
	return errors.New("DisconnectFunc not implemented")
}

func (m *MockSessionManager) Sessions() []session.Session {
	if m.SessionsFunc != nil {
		return m.SessionsFunc()
	}
	return nil
}
