package catalog

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistributionEpsilon is the tolerance on fractions that must sum to 1
const DistributionEpsilon = 1e-3

var (
	ErrInvalidDuration       = errors.New("cycle duration must be positive")
	ErrPhaseMismatch         = errors.New("phase distribution length does not match phase list")
	ErrInvalidDistribution   = errors.New("phase distribution must be non-negative and sum to 1")
	ErrUnknownBreathingPhase = errors.New("breathing pattern references unknown phase")
	ErrInvalidJointRange     = errors.New("joint range of motion is invalid")
	ErrInvalidTempo          = errors.New("tempo must be three non-negative fractions summing to 1")
	ErrMissingFallback       = errors.New("catalog has no fallback exercise")
	ErrDuplicateExercise     = errors.New("exercise defined more than once")
)

// Validate checks the definition invariants. It is run once when a catalog
// is loaded so that malformed data never reaches the animation loop.
func (d *Definition) Validate() error {
	if _, ok := ParseExerciseType(string(d.Type)); !ok {
		return fmt.Errorf("unknown exercise type %q", d.Type)
	}
	if !(d.Duration > 0) || math.IsInf(d.Duration, 0) {
		return fmt.Errorf("%s: %w (got %v)", d.Type, ErrInvalidDuration, d.Duration)
	}
	if len(d.Phases) == 0 || len(d.Phases) != len(d.PhaseDistribution) {
		return fmt.Errorf("%s: %w (%d phases, %d fractions)", d.Type, ErrPhaseMismatch,
			len(d.Phases), len(d.PhaseDistribution))
	}
	if err := validateFractions(d.PhaseDistribution); err != nil {
		return fmt.Errorf("%s: %w: %v", d.Type, ErrInvalidDistribution, err)
	}

	for _, name := range []string{d.Breathing.Inhale, d.Breathing.Exhale} {
		if name == "" {
			continue
		}
		if d.phaseIndex(name) < 0 {
			return fmt.Errorf("%s: %w %q", d.Type, ErrUnknownBreathingPhase, name)
		}
	}

	for joint, bio := range d.Joints {
		if bio.Min > bio.Max || math.IsNaN(bio.Min) || math.IsNaN(bio.Max) {
			return fmt.Errorf("%s: %w: %s min %.1f > max %.1f", d.Type, ErrInvalidJointRange, joint, bio.Min, bio.Max)
		}
		if bio.Axis != "" && !bio.Axis.Valid() {
			return fmt.Errorf("%s: %w: %s axis %q", d.Type, ErrInvalidJointRange, joint, bio.Axis)
		}
	}

	if len(d.Performance.Tempo) > 0 {
		if len(d.Performance.Tempo) != 3 {
			return fmt.Errorf("%s: %w", d.Type, ErrInvalidTempo)
		}
		if err := validateFractions(d.Performance.Tempo); err != nil {
			return fmt.Errorf("%s: %w: %v", d.Type, ErrInvalidTempo, err)
		}
	}

	return nil
}

func (d *Definition) phaseIndex(name string) int {
	for i, p := range d.Phases {
		if p == name {
			return i
		}
	}
	return -1
}

func validateFractions(fractions []float64) error {
	for i, f := range fractions {
		if f < 0 || math.IsNaN(f) {
			return fmt.Errorf("fraction %d is %v", i, f)
		}
	}
	if sum := floats.Sum(fractions); math.Abs(sum-1) > DistributionEpsilon {
		return fmt.Errorf("fractions sum to %.4f", sum)
	}
	return nil
}
