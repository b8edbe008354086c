package physiology

import (
	"maps"
)

// State is the mutable physiological model of one session. It is owned by
// a single engine and only mutated from its tick.
type State struct {
	BreathingPhase     float64            `json:"breathingPhase"` // 0 = empty, 1 = full
	IsInhalation       bool               `json:"isInhalation"`
	FatigueFactor      float64            `json:"fatigueFactor"`   // [0, FatigueCap]
	StabilityFactor    float64            `json:"stabilityFactor"` // signed wobble, grows with fatigue
	MuscleActivation   map[string]float64 `json:"muscleActivation"`
	GroundContactForce float64            `json:"groundContactForce"` // multiples of bodyweight
	RepetitionCount    int                `json:"repetitionCount"`
	ElapsedSessionTime float64            `json:"elapsedSessionTime"`

	// HighlightIntensity drives the emissive muscle highlight, [0,1]
	HighlightIntensity float64 `json:"highlightIntensity"`
}

// NewState returns the state at session start
func NewState() *State {
	return &State{
		IsInhalation:       true,
		GroundContactForce: 1,
		MuscleActivation:   make(map[string]float64),
	}
}

// Clone returns a deep copy that shares nothing with s
func (s *State) Clone() State {
	out := *s
	out.MuscleActivation = maps.Clone(s.MuscleActivation)
	if out.MuscleActivation == nil {
		out.MuscleActivation = make(map[string]float64)
	}
	return out
}

// RepSnapshot captures the state around a completed repetition
type RepSnapshot struct {
	RepNumber     int
	FatigueBefore float64
	FatigueAfter  float64
	Activation    map[string]float64 // copy taken before any decay
}
