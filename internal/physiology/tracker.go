package physiology

import (
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
)

// Params holds the tunable constants of the physiological model
type Params struct {
	// Breathing moves BreathingStep per ReferenceTick seconds
	BreathingStep float64 `yaml:"breathing_step"`
	ReferenceTick float64 `yaml:"reference_tick"`

	FatigueIncrement float64 `yaml:"fatigue_increment"`
	FatigueCap       float64 `yaml:"fatigue_cap"`

	PrimaryActivation   float64 `yaml:"primary_activation"`
	SecondaryActivation float64 `yaml:"secondary_activation"`
	DecayAmount         float64 `yaml:"decay_amount"`
	// DecayDelay is a fraction of the cycle duration
	DecayDelay float64 `yaml:"decay_delay"`

	StabilityWaves       []core.Wave `yaml:"stability_waves"`
	StabilityFatigueGain float64     `yaml:"stability_fatigue_gain"`
}

// DefaultParams returns the reference tuning
func DefaultParams() Params {
	return Params{
		BreathingStep:       0.015,
		ReferenceTick:       1.0 / 60,
		FatigueIncrement:    0.03,
		FatigueCap:          0.3,
		PrimaryActivation:   0.9,
		SecondaryActivation: 0.6,
		DecayAmount:         0.3,
		DecayDelay:          0.5,
		StabilityWaves: []core.Wave{
			{Frequency: 1.7, Amplitude: 0.6},
			{Frequency: 4.3, Amplitude: 0.4, Phase: 1.1},
		},
		StabilityFatigueGain: 2,
	}
}

// Validate checks that the parameters describe a usable model
func (p Params) Validate() error {
	var errs []error
	if p.BreathingStep < 0 || p.BreathingStep > 1 {
		errs = append(errs, fmt.Errorf("breathing_step must be within [0, 1], got %v", p.BreathingStep))
	}
	if !(p.ReferenceTick > 0) {
		errs = append(errs, fmt.Errorf("reference_tick must be positive, got %v", p.ReferenceTick))
	}
	if p.FatigueIncrement < 0 {
		errs = append(errs, fmt.Errorf("fatigue_increment must not be negative, got %v", p.FatigueIncrement))
	}
	if p.FatigueCap < 0 || p.FatigueCap > 1 {
		errs = append(errs, fmt.Errorf("fatigue_cap must be within [0, 1], got %v", p.FatigueCap))
	}
	for name, v := range map[string]float64{
		"primary_activation":   p.PrimaryActivation,
		"secondary_activation": p.SecondaryActivation,
		"decay_amount":         p.DecayAmount,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	if p.DecayDelay < 0 {
		errs = append(errs, fmt.Errorf("decay_delay must not be negative, got %v", p.DecayDelay))
	}
	return errors.Join(errs...)
}

// Tracker advances a State. It holds only parameters, never session data,
// so one tracker can serve any number of states.
type Tracker struct {
	params    Params
	stability core.Oscillator
}

// NewTracker creates a tracker with the given parameters
func NewTracker(params Params) *Tracker {
	return &Tracker{
		params:    params,
		stability: core.NewOscillator(params.StabilityWaves...),
	}
}

// Params returns the tracker's parameters
func (tr *Tracker) Params() Params {
	return tr.params
}

// Advance moves the state forward by dt seconds ending at session time t.
// phaseName is the name of the phase the cycle is currently in.
func (tr *Tracker) Advance(s *State, def *catalog.Definition, t, dt float64, phaseName string) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}
	s.ElapsedSessionTime = t

	if def != nil {
		switch phaseName {
		case "":
		case def.Breathing.Inhale:
			s.IsInhalation = true
		case def.Breathing.Exhale:
			s.IsInhalation = false
		}
	}

	step := tr.params.BreathingStep * dt / tr.params.ReferenceTick
	if s.IsInhalation {
		s.BreathingPhase = core.Clamp01(s.BreathingPhase + step)
	} else {
		s.BreathingPhase = core.Clamp01(s.BreathingPhase - step)
	}

	s.StabilityFactor = tr.Stability(t, s.FatigueFactor)
}

// Stability is the procedural wobble at time t. It is a pure function of
// its arguments.
func (tr *Tracker) Stability(t, fatigue float64) float64 {
	return tr.stability.At(t) * (1 + fatigue*tr.params.StabilityFatigueGain)
}

// MaxStability is the largest wobble magnitude the tracker can produce
func (tr *Tracker) MaxStability() float64 {
	return tr.stability.Peak() * (1 + tr.params.FatigueCap*tr.params.StabilityFatigueGain)
}

// CompleteRep records a finished repetition: the counter and fatigue rise
// and the exercise's muscles are activated. The returned snapshot holds the
// activation before any decay is applied.
func (tr *Tracker) CompleteRep(s *State, def *catalog.Definition) RepSnapshot {
	before := s.FatigueFactor
	s.RepetitionCount++
	s.FatigueFactor = math.Min(s.FatigueFactor+tr.params.FatigueIncrement, tr.params.FatigueCap)
	if s.FatigueFactor < before {
		s.FatigueFactor = before
	}

	if s.MuscleActivation == nil {
		s.MuscleActivation = make(map[string]float64)
	}
	if def != nil {
		for _, m := range def.SecondaryMuscles {
			s.MuscleActivation[m] = tr.params.SecondaryActivation
		}
		for _, m := range def.PrimaryMuscles {
			s.MuscleActivation[m] = tr.params.PrimaryActivation
		}
	}

	return RepSnapshot{
		RepNumber:     s.RepetitionCount,
		FatigueBefore: before,
		FatigueAfter:  s.FatigueFactor,
		Activation:    maps.Clone(s.MuscleActivation),
	}
}

// Decay lowers every muscle activation by the decay amount, floored at 0
func (tr *Tracker) Decay(s *State) {
	for m, v := range s.MuscleActivation {
		s.MuscleActivation[m] = core.ClampPositive(v - tr.params.DecayAmount)
	}
}

// DecayDelay returns how long after a rep the activation decay is due
func (tr *Tracker) DecayDelay(def *catalog.Definition) float64 {
	if def == nil {
		return 0
	}
	return def.Duration * tr.params.DecayDelay
}
