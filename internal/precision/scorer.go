package precision

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Result summarizes one scoring pass.
type Result struct {
	Score   int
	Mean    float64
	StdDev  float64
	Samples int
}

// Distance is the Euclidean distance between a prediction and the target.
func Distance(p GazePoint, t TargetPoint) float64 {
	return math.Hypot(t.X-p.X, t.Y-p.Y)
}

// PointPrecision maps a single prediction to [0, 100]. Predictions farther
// than maxDistance from the target score 0.
func PointPrecision(p GazePoint, t TargetPoint, maxDistance float64) float64 {
	if maxDistance <= 0 || !isFinite(maxDistance) || !isFinite(t.X) || !isFinite(t.Y) {
		return 0
	}
	d := math.Max(Distance(p, t), 0)
	if d > maxDistance {
		return 0
	}
	return 100 * (1 - d/maxDistance)
}

// Mean is the unrounded average precision over the finite points given.
// An empty or all-invalid sample scores 0.
func Mean(points []GazePoint, t TargetPoint, maxDistance float64) float64 {
	values := precisions(points, t, maxDistance)
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Score is Mean rounded to the nearest integer for display.
func Score(points []GazePoint, t TargetPoint, maxDistance float64) int {
	return int(math.Round(Mean(points, t, maxDistance)))
}

// Evaluate computes the score along with the spread of per-point precisions.
func Evaluate(points []GazePoint, t TargetPoint, maxDistance float64) Result {
	values := precisions(points, t, maxDistance)
	if len(values) == 0 {
		return Result{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return Result{
		Score:   int(math.Round(mean)),
		Mean:    mean,
		StdDev:  std,
		Samples: len(values),
	}
}

func precisions(points []GazePoint, t TargetPoint, maxDistance float64) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if !p.Finite() {
			continue
		}
		values = append(values, PointPrecision(p, t, maxDistance))
	}
	return values
}
