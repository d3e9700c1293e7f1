package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godilite/gaze-server/internal/precision"
	"github.com/godilite/gaze-server/internal/repository/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dbTimeout           = 1 * time.Second
	DefaultTestDuration = 5 * time.Second
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoActiveTest    = errors.New("no active precision test")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNoResults       = errors.New("no precision results found")
	ErrStorageFailure  = errors.New("storage failure")
)

type Option func(*PrecisionService)

// WithWindowSize sets how many recent predictions a test keeps.
func WithWindowSize(n int) Option {
	return func(s *PrecisionService) {
		if n > 0 {
			s.windowSize = n
		}
	}
}

// WithTestDuration sets how long a test collects predictions before it is
// scored automatically.
func WithTestDuration(d time.Duration) Option {
	return func(s *PrecisionService) {
		if d > 0 {
			s.testDuration = d
		}
	}
}

type activeTest struct {
	info     TestInfo
	viewport precision.Viewport
	window   *precision.Window
	timer    *time.Timer
	// finishing is set while the result is being stored; the test stays
	// registered until the save succeeds.
	finishing bool
}

// ResultListener is notified after a test result has been stored.
type ResultListener func(TestResult)

// PrecisionService runs fixed-duration precision tests, one per session.
type PrecisionService struct {
	storage  ResultRepository
	sessions SessionLookup
	logger   *zap.Logger

	windowSize   int
	testDuration time.Duration
	now          func() time.Time
	newID        func() string

	mu        sync.Mutex
	tests     map[string]*activeTest
	listeners []ResultListener
}

// NewPrecisionService creates a new PrecisionService instance.
func NewPrecisionService(storage ResultRepository, sessions SessionLookup, logger *zap.Logger, opts ...Option) *PrecisionService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if sessions == nil {
		panic("sessions must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}

	s := &PrecisionService{
		storage:      storage,
		sessions:     sessions,
		logger:       logger,
		windowSize:   precision.DefaultWindowSize,
		testDuration: DefaultTestDuration,
		now:          time.Now,
		newID:        uuid.NewString,
		tests:        make(map[string]*activeTest),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartTest begins collecting predictions for sessionID against the named
// target. A test already running for the session is discarded.
func (s *PrecisionService) StartTest(ctx context.Context, sessionID string, target precision.CalibrationTarget, vp precision.Viewport) (TestInfo, error) {
	if _, err := s.sessions.Lookup(sessionID); err != nil {
		return TestInfo{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	point, maxDistance, err := vp.Target(target)
	if err != nil {
		return TestInfo{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	started := s.now()
	info := TestInfo{
		TestID:      s.newID(),
		SessionID:   sessionID,
		Target:      target,
		Point:       point,
		MaxDistance: maxDistance,
		StartedAt:   started,
		Deadline:    started.Add(s.testDuration),
	}
	test := &activeTest{
		info:     info,
		viewport: vp,
		window:   precision.NewWindow(s.windowSize),
	}

	s.mu.Lock()
	if prev, ok := s.tests[sessionID]; ok {
		prev.timer.Stop()
		s.logger.Info("replacing running precision test",
			zap.String("session_id", sessionID),
			zap.String("test_id", prev.info.TestID))
	}
	test.timer = time.AfterFunc(s.testDuration, func() {
		s.expire(sessionID, info.TestID)
	})
	s.tests[sessionID] = test
	s.mu.Unlock()

	s.logger.Info("precision test started",
		zap.String("session_id", sessionID),
		zap.String("test_id", info.TestID),
		zap.String("target", string(target)),
		zap.Float64("target_x", point.X),
		zap.Float64("target_y", point.Y),
		zap.Float64("max_distance", maxDistance),
		zap.Duration("duration", s.testDuration))

	return info, nil
}

// RecordPrediction appends one page-coordinate prediction to the session's
// running test. It never waits on I/O.
func (s *PrecisionService) RecordPrediction(ctx context.Context, sessionID string, p precision.GazePoint) error {
	if !p.Finite() {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, precision.ErrNonFinitePoint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	test, ok := s.tests[sessionID]
	if !ok {
		return ErrNoActiveTest
	}
	rel := test.viewport.Relative(p.X, p.Y)
	if err := test.window.Append(rel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// ActiveTest reports the test currently running for sessionID, if any.
func (s *PrecisionService) ActiveTest(sessionID string) (TestInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	test, ok := s.tests[sessionID]
	if !ok {
		return TestInfo{}, false
	}
	return test.info, true
}

// FinishTest stops the session's running test, scores it and stores the result.
// When storing fails the test stays active, so the caller may retry.
func (s *PrecisionService) FinishTest(ctx context.Context, sessionID string) (TestResult, error) {
	test, points, ok := s.claim(sessionID, "")
	if !ok {
		return TestResult{}, ErrNoActiveTest
	}
	return s.finalize(ctx, test, points)
}

// OnResult registers fn to run after every stored result, including results
// of tests finished by their timer.
func (s *PrecisionService) OnResult(fn ResultListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ListResults returns the stored results of a session, newest first.
func (s *PrecisionService) ListResults(ctx context.Context, sessionID string) ([]TestResult, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.GetResultsBySession(dbCtx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoResults
	}

	results := make([]TestResult, len(rows))
	for i, r := range rows {
		results[i] = TestResult{
			TestID:      r.TestID,
			SessionID:   r.SessionID,
			Target:      precision.CalibrationTarget(r.Target),
			Score:       r.Score,
			Mean:        r.Mean,
			StdDev:      r.StdDev,
			Samples:     r.Samples,
			MaxDistance: r.MaxDistance,
			FinishedAt:  r.CreatedAt,
		}
	}
	return results, nil
}

// Close cancels every running test without scoring it.
func (s *PrecisionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, test := range s.tests {
		test.timer.Stop()
		delete(s.tests, id)
	}
}

// GetSessionSummary returns per-target aggregates of a session's stored results.
func (s *PrecisionService) GetSessionSummary(ctx context.Context, sessionID string) (SessionSummary, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.GetTargetSummaries(dbCtx, sessionID)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return SessionSummary{}, ErrNoResults
	}

	summary := SessionSummary{
		SessionID: sessionID,
		Targets:   make([]TargetSummary, 0, len(rows)),
	}

	var weighted float64
	var tests int
	for _, r := range rows {
		summary.Targets = append(summary.Targets, TargetSummary{
			Target:       r.Target,
			TestCount:    r.TestCount,
			AverageScore: r.AverageScore,
			BestScore:    r.BestScore,
			AverageMean:  r.AverageMean,
		})
		weighted += r.AverageScore * float64(r.TestCount)
		tests += r.TestCount
	}
	if tests > 0 {
		summary.OverallScore = weighted / float64(tests)
	}

	return summary, nil
}

// claim stops the session's test timer and marks the test as finishing. It
// returns a snapshot of the window to score. When testID is non-empty only
// that test is claimed.
func (s *PrecisionService) claim(sessionID, testID string) (*activeTest, []precision.GazePoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	test, ok := s.tests[sessionID]
	if !ok || test.finishing || (testID != "" && test.info.TestID != testID) {
		return nil, nil, false
	}
	test.finishing = true
	test.timer.Stop()
	return test, test.window.Points(), true
}

// settle ends a claim. A stored test is removed unless StartTest already
// replaced it; an unstored one goes back to accepting predictions.
func (s *PrecisionService) settle(test *activeTest, stored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	test.finishing = false
	if stored && s.tests[test.info.SessionID] == test {
		delete(s.tests, test.info.SessionID)
	}
}

func (s *PrecisionService) resultListeners() []ResultListener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ResultListener(nil), s.listeners...)
}

func (s *PrecisionService) expire(sessionID, testID string) {
	test, points, ok := s.claim(sessionID, testID)
	if !ok {
		return
	}

	res, err := s.finalize(context.Background(), test, points)
	if err != nil {
		s.logger.Error("failed to store expired precision test, keeping it active",
			zap.String("session_id", sessionID),
			zap.String("test_id", testID),
			zap.Error(err))
		return
	}
	s.logger.Info("precision test expired",
		zap.String("session_id", sessionID),
		zap.String("test_id", testID),
		zap.Int("score", res.Score))
}

func (s *PrecisionService) finalize(ctx context.Context, test *activeTest, points []precision.GazePoint) (TestResult, error) {
	info := test.info
	scored := precision.Evaluate(points, info.Point, info.MaxDistance)

	res := TestResult{
		TestID:      info.TestID,
		SessionID:   info.SessionID,
		Target:      info.Target,
		Score:       scored.Score,
		Mean:        scored.Mean,
		StdDev:      scored.StdDev,
		Samples:     scored.Samples,
		MaxDistance: info.MaxDistance,
		FinishedAt:  s.now(),
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.storage.SaveResult(dbCtx, models.PrecisionResult{
		SessionID:   res.SessionID,
		TestID:      res.TestID,
		Target:      string(res.Target),
		Score:       res.Score,
		Mean:        res.Mean,
		StdDev:      res.StdDev,
		Samples:     res.Samples,
		MaxDistance: res.MaxDistance,
		CreatedAt:   res.FinishedAt,
	})
	if err != nil {
		s.settle(test, false)
		return TestResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	// Listeners run before the test is released, so once a session shows no
	// active test every listener has seen its result.
	for _, fn := range s.resultListeners() {
		fn(res)
	}
	s.settle(test, true)

	s.logger.Info("precision test scored",
		zap.String("session_id", res.SessionID),
		zap.String("test_id", res.TestID),
		zap.Int("score", res.Score),
		zap.Float64("mean", res.Mean),
		zap.Int("samples", res.Samples))

	return res, nil
}
