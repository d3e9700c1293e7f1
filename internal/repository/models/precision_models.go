package models

import "time"

type PrecisionResult struct {
	ID          int64
	SessionID   string
	TestID      string
	Target      string
	Score       int
	Mean        float64
	StdDev      float64
	Samples     int
	MaxDistance float64
	CreatedAt   time.Time
}

type TargetSummary struct {
	Target       string
	TestCount    int
	AverageScore float64
	BestScore    int
	AverageMean  float64
}
