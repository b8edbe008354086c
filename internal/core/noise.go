package core

import (
	"math"
)

// Wave is a single sinusoidal component of procedural noise.
// Frequency is in radians per second of session time.
type Wave struct {
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Phase     float64 `yaml:"phase"`
}

// At evaluates the wave at session time t
func (w Wave) At(t float64) float64 {
	return math.Sin(t*w.Frequency+w.Phase) * w.Amplitude
}

// Oscillator sums a fixed set of waves. It holds no state, so the same t
// always yields the same value regardless of how often it is sampled.
type Oscillator struct {
	Waves []Wave
}

// NewOscillator creates an oscillator from the given components
func NewOscillator(waves ...Wave) Oscillator {
	return Oscillator{Waves: waves}
}

// At returns the summed signal at session time t
func (o Oscillator) At(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	sum := 0.0
	for _, w := range o.Waves {
		sum += w.At(t)
	}
	return sum
}

// Peak returns the largest absolute value the oscillator can produce
func (o Oscillator) Peak() float64 {
	peak := 0.0
	for _, w := range o.Waves {
		peak += math.Abs(w.Amplitude)
	}
	return peak
}

// SinusoidalVariation adds sinusoidal variation to a value
// amplitude: variation magnitude as percentage of target
// progress: 0-1 progress through the variation period
func SinusoidalVariation(target, amplitude, progress float64) float64 {
	return target + math.Sin(progress*2*math.Pi)*target*amplitude
}

// Lerp linearly interpolates between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ClampPositive ensures a value is non-negative
func ClampPositive(value float64) float64 {
	if value < 0 || math.IsNaN(value) {
		return 0
	}
	return value
}

// Clamp ensures a value is within bounds. NaN collapses to min.
func Clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Clamp01 clamps a value to [0, 1]
func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}
