package catalog

import (
	"strings"
)

// ExerciseType identifies one of the supported movements
type ExerciseType string

const (
	Squat  ExerciseType = "squat"
	Pushup ExerciseType = "pushup"
	Plank  ExerciseType = "plank"
	Lunge  ExerciseType = "lunge"
	Burpee ExerciseType = "burpee"
)

// FallbackExercise is used whenever an exercise type is not recognised
const FallbackExercise = Squat

// AllExerciseTypes returns the closed set of exercise types
func AllExerciseTypes() []ExerciseType {
	return []ExerciseType{Squat, Pushup, Plank, Lunge, Burpee}
}

// ParseExerciseType maps a selector string onto the enumeration. Unknown
// values resolve to the fallback exercise and ok=false.
func ParseExerciseType(s string) (ExerciseType, bool) {
	switch ExerciseType(strings.ToLower(strings.TrimSpace(s))) {
	case Squat:
		return Squat, true
	case Pushup:
		return Pushup, true
	case Plank:
		return Plank, true
	case Lunge:
		return Lunge, true
	case Burpee:
		return Burpee, true
	default:
		return FallbackExercise, false
	}
}

func (e ExerciseType) String() string {
	return string(e)
}

// Joint is an anatomical joint class in the biomechanics table
type Joint string

const (
	JointKnee     Joint = "knee"
	JointHip      Joint = "hip"
	JointAnkle    Joint = "ankle"
	JointElbow    Joint = "elbow"
	JointShoulder Joint = "shoulder"
	JointSpine    Joint = "spine"
	JointNeck     Joint = "neck"
)

// Axis is the primary rotation axis of a joint
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Valid reports whether the axis is one of x, y or z
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// JointBiomechanics is the per-joint range of motion for an exercise.
// Angles are included joint angles in degrees.
type JointBiomechanics struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Torque float64 `yaml:"torque"` // Nm, informational
	Axis   Axis    `yaml:"axis"`
}

// BreathingPattern maps phase names onto breath direction
type BreathingPattern struct {
	Inhale string `yaml:"inhale"`
	Exhale string `yaml:"exhale"`
}

// ForceProfile scales ground-reaction estimates, in multiples of bodyweight
type ForceProfile struct {
	PeakMultiplier           float64 `yaml:"peak_multiplier"`
	GroundReactionMultiplier float64 `yaml:"ground_reaction_multiplier"`
}

// Checkpoint is a form-critical moment in the cycle. Informational only.
type Checkpoint struct {
	Phase     float64 `yaml:"phase"`
	Check     string  `yaml:"check"`
	Tolerance float64 `yaml:"tolerance"`
}

// PerformanceVariables hold exercise-specific tempo and range settings
type PerformanceVariables struct {
	// Tempo is the eccentric/isometric/concentric split of the cycle.
	// Empty means the solver uses its built-in split.
	Tempo          []float64       `yaml:"tempo"`
	PausePositions []float64       `yaml:"pause_positions"`
	TargetROM      float64         `yaml:"target_rom"`
	Flags          map[string]bool `yaml:"flags"`
}

// Definition is the immutable description of one exercise
type Definition struct {
	Type              ExerciseType                `yaml:"type"`
	Name              string                      `yaml:"name"`
	Duration          float64                     `yaml:"duration"` // seconds per cycle
	Phases            []string                    `yaml:"phases"`
	PhaseDistribution []float64                   `yaml:"phase_distribution"`
	Breathing         BreathingPattern            `yaml:"breathing"`
	PrimaryMuscles    []string                    `yaml:"primary_muscles"`
	SecondaryMuscles  []string                    `yaml:"secondary_muscles"`
	Intensity         float64                     `yaml:"intensity"`
	EnergyPerRep      float64                     `yaml:"energy_per_rep"` // kcal
	Force             ForceProfile                `yaml:"force"`
	Joints            map[Joint]JointBiomechanics `yaml:"joints"`
	Checkpoints       []Checkpoint                `yaml:"checkpoints"`
	Performance       PerformanceVariables        `yaml:"performance"`
}

// PhaseName returns the name of phase i, or "" when out of range
func (d *Definition) PhaseName(i int) string {
	if i < 0 || i >= len(d.Phases) {
		return ""
	}
	return d.Phases[i]
}

// TargetROM returns the fraction of the full range the exercise aims for
func (d *Definition) TargetROM() float64 {
	if d.Performance.TargetROM <= 0 || d.Performance.TargetROM > 1 {
		return 1
	}
	return d.Performance.TargetROM
}

// Flag returns an exercise-specific boolean flag
func (d *Definition) Flag(name string) bool {
	return d.Performance.Flags[name]
}
