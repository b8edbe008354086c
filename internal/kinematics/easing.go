package kinematics

import (
	"math"
	"strings"

	"github.com/sebastiankruger/exercise-simulator/internal/core"
)

// Easing reshapes linear progress in [0,1]. Every easing maps 0 to 0 and
// 1 to 1, and clamps its input.
type Easing func(float64) float64

func Linear(p float64) float64 {
	return core.Clamp01(p)
}

func QuadIn(p float64) float64 {
	p = core.Clamp01(p)
	return p * p
}

func QuadOut(p float64) float64 {
	p = core.Clamp01(p)
	return p * (2 - p)
}

func QuadInOut(p float64) float64 {
	p = core.Clamp01(p)
	if p < 0.5 {
		return 2 * p * p
	}
	return -1 + (4-2*p)*p
}

func CubicInOut(p float64) float64 {
	p = core.Clamp01(p)
	if p < 0.5 {
		return 4 * p * p * p
	}
	f := 2*p - 2
	return 0.5*f*f*f + 1
}

func SineInOut(p float64) float64 {
	p = core.Clamp01(p)
	return core.Clamp01(-(math.Cos(math.Pi*p) - 1) / 2)
}

var easings = map[string]Easing{
	"linear":       Linear,
	"quad_in":      QuadIn,
	"quad_out":     QuadOut,
	"quad_in_out":  QuadInOut,
	"cubic_in_out": CubicInOut,
	"sine_in_out":  SineInOut,
}

// EasingByName looks up an easing; unknown names return Linear and false
func EasingByName(name string) (Easing, bool) {
	e, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Linear, false
	}
	return e, true
}

// EasingNames returns the registered easing names
func EasingNames() []string {
	return []string{"linear", "quad_in", "quad_out", "quad_in_out", "cubic_in_out", "sine_in_out"}
}
