package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/godilite/gaze-server/internal/precision"
	"github.com/godilite/gaze-server/internal/repository/models"
	"github.com/godilite/gaze-server/internal/service/mocks"
	"github.com/godilite/gaze-server/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testViewport = precision.Viewport{Width: 800, Height: 600}

func knownSessions(ids ...string) *mocks.MockSessionLookup {
	m := &mocks.MockSessionLookup{Known: make(map[string]session.Session)}
	for _, id := range ids {
		m.Known[id] = session.Session{ID: id, Identity: session.Student}
	}
	return m
}

func newTestService(repo ResultRepository, opts ...Option) *PrecisionService {
	opts = append([]Option{WithTestDuration(time.Hour)}, opts...)
	svc := NewPrecisionService(repo, knownSessions("s1", "s2"), zap.NewNop(), opts...)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// TestNewPrecisionService tests the constructor
func TestNewPrecisionService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{}
		logger := zap.NewNop()

		svc := NewPrecisionService(mockRepo, knownSessions(), logger)

		assert.NotNil(t, svc)
		assert.Equal(t, mockRepo, svc.storage)
		assert.Equal(t, logger, svc.logger)
		assert.Equal(t, precision.DefaultWindowSize, svc.windowSize)
		assert.Equal(t, DefaultTestDuration, svc.testDuration)
	})

	t.Run("options override defaults", func(t *testing.T) {
		svc := NewPrecisionService(&mocks.MockResultRepository{}, knownSessions(), nil,
			WithWindowSize(10), WithTestDuration(time.Second))

		assert.Equal(t, 10, svc.windowSize)
		assert.Equal(t, time.Second, svc.testDuration)
		assert.NotNil(t, svc.logger)
	})

	t.Run("invalid options are ignored", func(t *testing.T) {
		svc := NewPrecisionService(&mocks.MockResultRepository{}, knownSessions(), zap.NewNop(),
			WithWindowSize(0), WithTestDuration(-time.Second))

		assert.Equal(t, precision.DefaultWindowSize, svc.windowSize)
		assert.Equal(t, DefaultTestDuration, svc.testDuration)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewPrecisionService(nil, knownSessions(), zap.NewNop())
		})
	})

	t.Run("nil sessions panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewPrecisionService(&mocks.MockResultRepository{}, nil, zap.NewNop())
		})
	})
}

func TestStartTest(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves target and deadline", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})
		defer svc.Close()

		info, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)

		require.NoError(t, err)
		assert.NotEmpty(t, info.TestID)
		assert.Equal(t, "s1", info.SessionID)
		assert.Equal(t, precision.TargetPoint{X: 400, Y: 300}, info.Point)
		assert.Equal(t, 300.0, info.MaxDistance)
		assert.Equal(t, info.StartedAt.Add(time.Hour), info.Deadline)

		active, ok := svc.ActiveTest("s1")
		assert.True(t, ok)
		assert.Equal(t, info, active)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})

		_, err := svc.StartTest(ctx, "ghost", precision.TargetMiddle, testViewport)

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("invalid viewport", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})

		_, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, precision.Viewport{})

		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Contains(t, err.Error(), "viewport")
	})

	t.Run("unknown target", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})

		_, err := svc.StartTest(ctx, "s1", "sideways", testViewport)

		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("restart replaces running test", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})
		defer svc.Close()

		first, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)
		require.NoError(t, svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: 1, Y: 1}))

		second, err := svc.StartTest(ctx, "s1", precision.TargetUpperLeft, testViewport)
		require.NoError(t, err)

		assert.NotEqual(t, first.TestID, second.TestID)
		active, _ := svc.ActiveTest("s1")
		assert.Equal(t, second.TestID, active.TestID)
		assert.Equal(t, 0, svc.tests["s1"].window.Len())
	})
}

func TestRecordPrediction(t *testing.T) {
	ctx := context.Background()

	t.Run("no active test", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})

		err := svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: 1, Y: 1})

		assert.ErrorIs(t, err, ErrNoActiveTest)
	})

	t.Run("non-finite point rejected", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})
		defer svc.Close()
		_, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)

		err = svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: math.NaN(), Y: 1})

		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Equal(t, 0, svc.tests["s1"].window.Len())
	})

	t.Run("applies canvas offset", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})
		defer svc.Close()
		vp := precision.Viewport{Width: 800, Height: 600, OffsetLeft: 10, OffsetTop: 20}
		_, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, vp)
		require.NoError(t, err)

		require.NoError(t, svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: 410, Y: 310}))

		assert.Equal(t, []precision.GazePoint{{X: 400, Y: 290}}, svc.tests["s1"].window.Points())
	})

	t.Run("window is bounded", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{}, WithWindowSize(5))
		defer svc.Close()
		_, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			require.NoError(t, svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: float64(i), Y: 0}))
		}

		assert.Equal(t, 5, svc.tests["s1"].window.Len())
	})
}

func TestFinishTest(t *testing.T) {
	ctx := context.Background()

	t.Run("scores and stores the window", func(t *testing.T) {
		var saved models.PrecisionResult
		mockRepo := &mocks.MockResultRepository{
			SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
				saved = res
				return 1, nil
			},
		}
		svc := newTestService(mockRepo)

		// middle of 800x600 is (400, 300) with max distance 300
		info, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)
		for _, p := range []precision.GazePoint{{X: 400, Y: 300}, {X: 550, Y: 300}, {X: 700, Y: 300}} {
			require.NoError(t, svc.RecordPrediction(ctx, "s1", p))
		}

		res, err := svc.FinishTest(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, 50, res.Score)
		assert.InDelta(t, 50.0, res.Mean, 1e-9)
		assert.Equal(t, 3, res.Samples)
		assert.Equal(t, info.TestID, res.TestID)

		assert.Equal(t, "s1", saved.SessionID)
		assert.Equal(t, "middle", saved.Target)
		assert.Equal(t, 50, saved.Score)
		assert.Equal(t, 300.0, saved.MaxDistance)

		_, ok := svc.ActiveTest("s1")
		assert.False(t, ok)
	})

	t.Run("empty window scores 0", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
				return 1, nil
			},
		}
		svc := newTestService(mockRepo)
		_, err := svc.StartTest(ctx, "s1", precision.TargetLowerRight, testViewport)
		require.NoError(t, err)

		res, err := svc.FinishTest(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, 0, res.Score)
		assert.Equal(t, 0, res.Samples)
	})

	t.Run("no active test", func(t *testing.T) {
		svc := newTestService(&mocks.MockResultRepository{})

		_, err := svc.FinishTest(ctx, "s1")

		assert.ErrorIs(t, err, ErrNoActiveTest)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
				return 0, errors.New("database is locked")
			},
		}
		svc := newTestService(mockRepo)
		_, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)

		res, err := svc.FinishTest(ctx, "s1")

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "database is locked")
		assert.Equal(t, TestResult{}, res)
	})

	t.Run("storage failure keeps the test for a retry", func(t *testing.T) {
		calls := 0
		mockRepo := &mocks.MockResultRepository{
			SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
				calls++
				if calls == 1 {
					return 0, errors.New("disk full")
				}
				return 2, nil
			},
		}
		svc := newTestService(mockRepo)
		defer svc.Close()
		info, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)
		require.NoError(t, svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: 400, Y: 300}))

		_, err = svc.FinishTest(ctx, "s1")
		require.ErrorIs(t, err, ErrStorageFailure)

		active, ok := svc.ActiveTest("s1")
		require.True(t, ok)
		assert.Equal(t, info.TestID, active.TestID)
		require.NoError(t, svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: 550, Y: 300}))

		res, err := svc.FinishTest(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, info.TestID, res.TestID)
		assert.Equal(t, 2, res.Samples)
		assert.Equal(t, 75, res.Score)
		assert.Equal(t, 2, calls)

		_, ok = svc.ActiveTest("s1")
		assert.False(t, ok)
	})

	t.Run("listeners see stored results only", func(t *testing.T) {
		fail := true
		mockRepo := &mocks.MockResultRepository{
			SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
				if fail {
					return 0, errors.New("database is locked")
				}
				return 1, nil
			},
		}
		svc := newTestService(mockRepo)
		defer svc.Close()
		var notified []TestResult
		svc.OnResult(func(res TestResult) { notified = append(notified, res) })

		_, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)

		_, err = svc.FinishTest(ctx, "s1")
		require.Error(t, err)
		assert.Empty(t, notified)

		fail = false
		res, err := svc.FinishTest(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, notified, 1)
		assert.Equal(t, res, notified[0])
	})

	t.Run("sessions are independent", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
				return 1, nil
			},
		}
		svc := newTestService(mockRepo)
		defer svc.Close()
		_, err := svc.StartTest(ctx, "s1", precision.TargetMiddle, testViewport)
		require.NoError(t, err)
		_, err = svc.StartTest(ctx, "s2", precision.TargetMiddle, testViewport)
		require.NoError(t, err)
		require.NoError(t, svc.RecordPrediction(ctx, "s1", precision.GazePoint{X: 400, Y: 300}))

		res, err := svc.FinishTest(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 100, res.Score)

		_, ok := svc.ActiveTest("s2")
		assert.True(t, ok)
	})
}

func TestTestExpiry(t *testing.T) {
	saved := make(chan models.PrecisionResult, 1)
	mockRepo := &mocks.MockResultRepository{
		SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
			saved <- res
			return 1, nil
		},
	}
	svc := NewPrecisionService(mockRepo, knownSessions("s1"), zap.NewNop(), WithTestDuration(20*time.Millisecond))

	_, err := svc.StartTest(context.Background(), "s1", precision.TargetMiddle, testViewport)
	require.NoError(t, err)
	require.NoError(t, svc.RecordPrediction(context.Background(), "s1", precision.GazePoint{X: 400, Y: 300}))

	select {
	case res := <-saved:
		assert.Equal(t, 100, res.Score)
		assert.Equal(t, 1, res.Samples)
	case <-time.After(2 * time.Second):
		t.Fatal("expired test was not stored")
	}

	assert.Eventually(t, func() bool {
		_, ok := svc.ActiveTest("s1")
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, err = svc.FinishTest(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNoActiveTest)
}

func TestTestExpiry_StorageFailure(t *testing.T) {
	attempts := make(chan struct{}, 1)
	mockRepo := &mocks.MockResultRepository{
		SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
			attempts <- struct{}{}
			return 0, errors.New("disk full")
		},
	}
	svc := NewPrecisionService(mockRepo, knownSessions("s1"), zap.NewNop(), WithTestDuration(20*time.Millisecond))
	defer svc.Close()

	info, err := svc.StartTest(context.Background(), "s1", precision.TargetMiddle, testViewport)
	require.NoError(t, err)

	select {
	case <-attempts:
	case <-time.After(2 * time.Second):
		t.Fatal("expired test was not saved")
	}

	assert.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		test, ok := svc.tests["s1"]
		return ok && !test.finishing
	}, time.Second, 5*time.Millisecond)

	active, ok := svc.ActiveTest("s1")
	require.True(t, ok)
	assert.Equal(t, info.TestID, active.TestID)
}

func TestTestExpiry_NotifiesListeners(t *testing.T) {
	mockRepo := &mocks.MockResultRepository{
		SaveResultFunc: func(ctx context.Context, res models.PrecisionResult) (int64, error) {
			return 1, nil
		},
	}
	svc := NewPrecisionService(mockRepo, knownSessions("s1"), zap.NewNop(), WithTestDuration(20*time.Millisecond))
	notified := make(chan TestResult, 1)
	svc.OnResult(func(res TestResult) { notified <- res })

	info, err := svc.StartTest(context.Background(), "s1", precision.TargetUpperLeft, testViewport)
	require.NoError(t, err)

	select {
	case res := <-notified:
		assert.Equal(t, info.TestID, res.TestID)
		assert.Equal(t, "s1", res.SessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not called for the expired test")
	}
}

func TestListResults(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("maps stored rows", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			GetResultsBySessionFunc: func(ctx context.Context, sessionID string) ([]models.PrecisionResult, error) {
				assert.Equal(t, "s1", sessionID)
				return []models.PrecisionResult{
					{ID: 2, SessionID: "s1", TestID: "t2", Target: "upperleft", Score: 40, Mean: 40.2, Samples: 12, MaxDistance: 150, CreatedAt: created},
					{ID: 1, SessionID: "s1", TestID: "t1", Target: "middle", Score: 80, Mean: 79.9, Samples: 50, MaxDistance: 300, CreatedAt: created.Add(-time.Minute)},
				}, nil
			},
		}
		svc := newTestService(mockRepo)

		results, err := svc.ListResults(ctx, "s1")

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "t2", results[0].TestID)
		assert.Equal(t, precision.TargetUpperLeft, results[0].Target)
		assert.Equal(t, 150.0, results[0].MaxDistance)
		assert.Equal(t, created, results[0].FinishedAt)
	})

	t.Run("no results", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			GetResultsBySessionFunc: func(ctx context.Context, sessionID string) ([]models.PrecisionResult, error) {
				return nil, nil
			},
		}

		_, err := newTestService(mockRepo).ListResults(ctx, "s1")

		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			GetResultsBySessionFunc: func(ctx context.Context, sessionID string) ([]models.PrecisionResult, error) {
				return nil, errors.New("query timeout")
			},
		}

		_, err := newTestService(mockRepo).ListResults(ctx, "s1")

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestGetSessionSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates targets", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			GetTargetSummariesFunc: func(ctx context.Context, sessionID string) ([]models.TargetSummary, error) {
				assert.Equal(t, "s1", sessionID)
				return []models.TargetSummary{
					{Target: "middle", TestCount: 3, AverageScore: 80, BestScore: 90, AverageMean: 80.1},
					{Target: "upperleft", TestCount: 1, AverageScore: 40, BestScore: 40, AverageMean: 40.0},
				}, nil
			},
		}
		svc := newTestService(mockRepo)

		summary, err := svc.GetSessionSummary(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, "s1", summary.SessionID)
		assert.Len(t, summary.Targets, 2)
		assert.Equal(t, 70.0, summary.OverallScore)
		assert.Equal(t, 90, summary.Targets[0].BestScore)
	})

	t.Run("no results", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			GetTargetSummariesFunc: func(ctx context.Context, sessionID string) ([]models.TargetSummary, error) {
				return nil, nil
			},
		}
		svc := newTestService(mockRepo)

		_, err := svc.GetSessionSummary(ctx, "s1")

		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockResultRepository{
			GetTargetSummariesFunc: func(ctx context.Context, sessionID string) ([]models.TargetSummary, error) {
				return nil, errors.New("query timeout")
			},
		}
		svc := newTestService(mockRepo)

		_, err := svc.GetSessionSummary(ctx, "s1")

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "query timeout")
	})
}
