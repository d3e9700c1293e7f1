package precision

import (
	"errors"
	"math"
)

// DefaultWindowSize is the number of recent predictions kept for one score.
const DefaultWindowSize = 50

var ErrNonFinitePoint = errors.New("gaze point has non-finite coordinates")

// GazePoint is a predicted gaze location in viewport coordinates.
type GazePoint struct {
	X float64
	Y float64
}

// Finite reports whether both coordinates are real numbers.
func (p GazePoint) Finite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// TargetPoint is the location the subject fixates on during a scoring pass.
type TargetPoint struct {
	X float64
	Y float64
}

// Window is a fixed-capacity ring of the most recent gaze points.
// It is not safe for concurrent use; the owner serializes access.
type Window struct {
	buf   []GazePoint
	start int
	size  int
}

// NewWindow creates a window holding at most capacity points.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{buf: make([]GazePoint, capacity)}
}

// Append adds p, evicting the oldest point once the window is full.
func (w *Window) Append(p GazePoint) error {
	if !p.Finite() {
		return ErrNonFinitePoint
	}
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = p
		w.size++
		return nil
	}
	w.buf[w.start] = p
	w.start = (w.start + 1) % len(w.buf)
	return nil
}

func (w *Window) Len() int { return w.size }

func (w *Window) Cap() int { return len(w.buf) }

// Points returns a copy of the held points, oldest first.
func (w *Window) Points() []GazePoint {
	out := make([]GazePoint, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

func (w *Window) Reset() {
	w.start = 0
	w.size = 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
