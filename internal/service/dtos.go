package service

import (
	"time"

	"github.com/godilite/gaze-server/internal/precision"
)

type TestInfo struct {
	TestID      string
	SessionID   string
	Target      precision.CalibrationTarget
	Point       precision.TargetPoint
	MaxDistance float64
	StartedAt   time.Time
	Deadline    time.Time
}

type TestResult struct {
	TestID      string
	SessionID   string
	Target      precision.CalibrationTarget
	Score       int
	Mean        float64
	StdDev      float64
	Samples     int
	MaxDistance float64
	FinishedAt  time.Time
}

type TargetSummary struct {
	Target       string
	TestCount    int
	AverageScore float64
	BestScore    int
	AverageMean  float64
}

type SessionSummary struct {
	SessionID    string
	OverallScore float64
	Targets      []TargetSummary
}
