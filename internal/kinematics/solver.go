package kinematics

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/phase"
	"github.com/sebastiankruger/exercise-simulator/internal/physiology"
)

// Params holds the tunable constants of the pose solver
type Params struct {
	// FatigueROMReduction shrinks the usable range by fatigue*k
	FatigueROMReduction float64 `yaml:"fatigue_rom_reduction"`
	// AsymmetryScale is the left/right offset in radians per unit of
	// stability, grown by fatigue*AsymmetryFatigueGain
	AsymmetryScale       float64 `yaml:"asymmetry_scale"`
	AsymmetryFatigueGain float64 `yaml:"asymmetry_fatigue_gain"`
	// Root sway per unit of stability
	SwayTranslation float64 `yaml:"sway_translation"` // metres
	SwayRotation    float64 `yaml:"sway_rotation"`    // radians
	// BurpeeResetWindow is the share of the burpee stand phase that holds
	// the exact rest pose
	BurpeeResetWindow float64                         `yaml:"burpee_reset_window"`
	Easing            map[catalog.ExerciseType]string `yaml:"easing"`
}

// DefaultParams returns the reference tuning
func DefaultParams() Params {
	return Params{
		FatigueROMReduction:  0.15,
		AsymmetryScale:       0.035,
		AsymmetryFatigueGain: 0.3,
		SwayTranslation:      0.01,
		SwayRotation:         0.02,
		BurpeeResetWindow:    0.1,
		Easing: map[catalog.ExerciseType]string{
			catalog.Squat:  "quad_in_out",
			catalog.Pushup: "cubic_in_out",
			catalog.Plank:  "sine_in_out",
			catalog.Lunge:  "quad_in_out",
			catalog.Burpee: "quad_in_out",
		},
	}
}

// Validate checks the parameters
func (p Params) Validate() error {
	var errs []error
	if p.FatigueROMReduction < 0 || p.FatigueROMReduction > 1 {
		errs = append(errs, fmt.Errorf("fatigue_rom_reduction must be within [0, 1], got %v", p.FatigueROMReduction))
	}
	if p.AsymmetryScale < 0 {
		errs = append(errs, fmt.Errorf("asymmetry_scale must not be negative, got %v", p.AsymmetryScale))
	}
	if p.BurpeeResetWindow < 0 || p.BurpeeResetWindow >= 1 {
		errs = append(errs, fmt.Errorf("burpee_reset_window must be within [0, 1), got %v", p.BurpeeResetWindow))
	}
	for typ, name := range p.Easing {
		if _, ok := EasingByName(name); !ok {
			errs = append(errs, fmt.Errorf("easing for %s: unknown easing %q", typ, name))
		}
	}
	return errors.Join(errs...)
}

// strategy poses the body for one exercise and returns the force drive in
// [0,1] used for the ground-reaction estimate
type strategy func(c *solveContext, res phase.Resolution) float64

// Solver maps a phase resolution and physiological state to a pose. It
// keeps no per-session data beyond which fallbacks it has already logged.
type Solver struct {
	params     Params
	logger     zerolog.Logger
	strategies map[catalog.ExerciseType]strategy
	burpee     *burpeeSolver
	reported   map[string]bool
}

// NewSolver creates a solver
func NewSolver(params Params, logger zerolog.Logger) *Solver {
	s := &Solver{
		params:   params,
		logger:   logger,
		burpee:   newBurpeeSolver(params.BurpeeResetWindow),
		reported: make(map[string]bool),
	}
	s.strategies = map[catalog.ExerciseType]strategy{
		catalog.Squat:  solveSquat,
		catalog.Pushup: solvePushup,
		catalog.Plank:  solvePlank,
		catalog.Lunge:  solveLunge,
		catalog.Burpee: s.burpee.solve,
	}
	return s
}

// Solve computes the pose for the resolved cycle position. Unknown exercise
// types use the squat strategy. The ground-reaction estimate is written
// back to state.GroundContactForce.
func (s *Solver) Solve(exercise catalog.ExerciseType, res phase.Resolution, state *physiology.State, def *catalog.Definition) Pose {
	strat, ok := s.strategies[exercise]
	if !ok {
		s.reportOnce("exercise:"+string(exercise), func(e *zerolog.Event) {
			e.Str("exercise", string(exercise)).Msg("Unknown exercise type, using squat solver")
		})
		exercise = catalog.FallbackExercise
		strat = s.strategies[exercise]
	}
	if def == nil {
		def = &catalog.Definition{Type: exercise}
	}
	if state == nil {
		state = physiology.NewState()
	}

	c := s.newContext(exercise, def, state)
	drive := strat(c, res)

	if !c.rest {
		sway := state.StabilityFactor
		c.pose.Root.Position.X += sway * s.params.SwayTranslation
		c.pose.Root.Rotation.Y += sway * s.params.SwayRotation * 0.5
		c.pose.Root.Rotation.Z += sway * s.params.SwayRotation
	}

	if c.airborne {
		state.GroundContactForce = 0
	} else {
		state.GroundContactForce = GroundForce(def, drive)
	}
	return c.pose
}

// GroundForce estimates the ground reaction in bodyweights. drive 0 is
// quiet standing, drive 1 the exercise's peak.
func GroundForce(def *catalog.Definition, drive float64) float64 {
	grm, peak := 1.0, 1.0
	if def != nil {
		if def.Force.GroundReactionMultiplier > 0 {
			grm = def.Force.GroundReactionMultiplier
		}
		if def.Force.PeakMultiplier > 0 {
			peak = def.Force.PeakMultiplier
		}
	}
	return grm * (1 + (peak-1)*core.Clamp01(drive))
}

func (s *Solver) newContext(exercise catalog.ExerciseType, def *catalog.Definition, state *physiology.State) *solveContext {
	fatigue := core.Clamp01(state.FatigueFactor)
	ease, _ := EasingByName(s.params.Easing[exercise])
	return &solveContext{
		solver:     s,
		def:        def,
		state:      state,
		pose:       RestPose(def),
		ease:       ease,
		rangeScale: core.Clamp01((1 - fatigue*s.params.FatigueROMReduction) * def.TargetROM()),
		asym:       s.params.AsymmetryScale * (1 + fatigue*s.params.AsymmetryFatigueGain) * state.StabilityFactor,
	}
}

func (s *Solver) reportOnce(key string, emit func(e *zerolog.Event)) {
	if s.reported[key] {
		return
	}
	s.reported[key] = true
	emit(s.logger.Debug())
}

// solveContext carries one Solve call's inputs and the pose being built
type solveContext struct {
	solver     *Solver
	def        *catalog.Definition
	state      *physiology.State
	pose       Pose
	ease       Easing
	rangeScale float64
	asym       float64
	rest       bool
	airborne   bool
}

func (c *solveContext) rom(j JointName) ROM {
	rom, ok := RangeFor(c.def, j)
	if !ok {
		c.solver.reportOnce(string(c.def.Type)+":"+string(j), func(e *zerolog.Event) {
			e.Str("exercise", string(c.def.Type)).
				Str("joint", string(j)).
				Msg("No biomechanics entry, using default range of motion")
		})
	}
	return rom
}

// place sets a joint at frac of its range (0 = min, 1 = max) plus the
// side's asymmetry, clamped to the range
func (c *solveContext) place(j JointName, frac float64) {
	rom := c.rom(j)
	angle := rom.Min + rom.Span()*core.Clamp01(frac) + j.Side()*c.asym
	jt := c.pose.Joints[j]
	jt.Rotation = jt.Rotation.WithComponent(rom.Axis, rom.Clamp(angle))
	c.pose.Joints[j] = jt
}

// bend flexes a joint from full extension by depth of the usable range
func (c *solveContext) bend(j JointName, depth float64) {
	c.place(j, 1-core.Clamp01(depth)*c.rangeScale)
}

// raise lifts a joint from its minimum by lift of the usable range
func (c *solveContext) raise(j JointName, lift float64) {
	c.place(j, core.Clamp01(lift)*c.rangeScale)
}

// flexAnkle dorsiflexes from the neutral mid-range
func (c *solveContext) flexAnkle(j JointName, depth float64) {
	c.place(j, 0.5-0.5*core.Clamp01(depth)*c.rangeScale)
}

func (c *solveContext) setFoot(j JointName, pos Vec3) {
	jt := c.pose.Joints[j]
	jt.Position = &pos
	c.pose.Joints[j] = jt
}

// reset replaces the pose with the exact rest pose
func (c *solveContext) reset() {
	c.pose = RestPose(c.def)
	c.rest = true
}

// tempo is an eccentric/isometric/concentric split of the cycle
type tempo struct {
	eccentric  float64
	isometric  float64
	concentric float64
}

// tempoFor returns the catalog tempo when set, otherwise the fallback
func tempoFor(def *catalog.Definition, fallback tempo) tempo {
	if t := def.Performance.Tempo; len(t) == 3 {
		return tempo{eccentric: t[0], isometric: t[1], concentric: t[2]}
	}
	return fallback
}

// depth maps the cycle phase to movement depth: eased descent, hold at the
// bottom, eased return
func (tp tempo) depth(cyclePhase float64, ease Easing) float64 {
	cp := core.Clamp01(cyclePhase)
	switch {
	case cp < tp.eccentric:
		return ease(cp / tp.eccentric)
	case cp < tp.eccentric+tp.isometric:
		return 1
	case tp.concentric > 0:
		return 1 - ease((cp-tp.eccentric-tp.isometric)/tp.concentric)
	default:
		return 0
	}
}
