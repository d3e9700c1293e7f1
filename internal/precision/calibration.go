package precision

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownTarget   = errors.New("unknown calibration target")
	ErrInvalidViewport = errors.New("viewport must have positive width and height")
)

// CalibrationTarget names one of the fixed on-screen fixation points.
type CalibrationTarget string

const (
	TargetMiddle     CalibrationTarget = "middle"
	TargetUpperLeft  CalibrationTarget = "upperleft"
	TargetUpperRight CalibrationTarget = "upperright"
	TargetLowerLeft  CalibrationTarget = "lowerleft"
	TargetLowerRight CalibrationTarget = "lowerright"
)

// ParseCalibrationTarget accepts target names case-insensitively.
func ParseCalibrationTarget(name string) (CalibrationTarget, error) {
	t := CalibrationTarget(strings.ToLower(strings.TrimSpace(name)))
	switch t {
	case TargetMiddle, TargetUpperLeft, TargetUpperRight, TargetLowerLeft, TargetLowerRight:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, name)
}

// Viewport describes the browser window and the canvas' absolute page offset.
type Viewport struct {
	Width      float64
	Height     float64
	OffsetLeft float64
	OffsetTop  float64
}

func (v Viewport) validate() error {
	if !(v.Width > 0) || !(v.Height > 0) || !isFinite(v.Width) || !isFinite(v.Height) {
		return ErrInvalidViewport
	}
	if !isFinite(v.OffsetLeft) || !isFinite(v.OffsetTop) {
		return ErrInvalidViewport
	}
	return nil
}

// Relative converts a page coordinate into canvas coordinates.
func (v Viewport) Relative(docX, docY float64) GazePoint {
	return GazePoint{X: docX - v.OffsetLeft, Y: docY - v.OffsetTop}
}

// Target returns the fixation point for name together with the distance at
// which a prediction's precision drops to 0. The centre target is judged
// against half the viewport height, the corner targets against a quarter of
// the shorter side.
func (v Viewport) Target(name CalibrationTarget) (TargetPoint, float64, error) {
	if err := v.validate(); err != nil {
		return TargetPoint{}, 0, err
	}

	w, h := v.Width, v.Height
	corner := math.Min(w, h) / 4

	switch name {
	case TargetMiddle:
		return TargetPoint{X: (w - v.OffsetLeft) / 2, Y: (h - v.OffsetTop) / 2}, h / 2, nil
	case TargetUpperLeft:
		return TargetPoint{X: w / 4, Y: h / 4}, corner, nil
	case TargetUpperRight:
		return TargetPoint{X: w * 3 / 4, Y: h / 4}, corner, nil
	case TargetLowerLeft:
		return TargetPoint{X: w / 4, Y: h * 3 / 4}, corner, nil
	case TargetLowerRight:
		return TargetPoint{X: w * 3 / 4, Y: h * 3 / 4}, corner, nil
	}
	return TargetPoint{}, 0, fmt.Errorf("%w: %q", ErrUnknownTarget, string(name))
}
