package engine

import (
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/kinematics"
	"github.com/sebastiankruger/exercise-simulator/internal/phase"
	"github.com/sebastiankruger/exercise-simulator/internal/physiology"
)

// HighlightStep sets the highlight intensity to Level, Delay seconds after
// a rep
type HighlightStep struct {
	Delay float64 `yaml:"delay"`
	Level float64 `yaml:"level"`
}

// Params holds the engine's tunable constants
type Params struct {
	RepHighThreshold  float64         `yaml:"rep_high_threshold"`
	RepLowThreshold   float64         `yaml:"rep_low_threshold"`
	FormFatigueWeight float64         `yaml:"form_fatigue_weight"`
	HighlightPeak     float64         `yaml:"highlight_peak"`
	HighlightSteps    []HighlightStep `yaml:"highlight_steps"`
}

// DefaultParams returns the reference tuning
func DefaultParams() Params {
	return Params{
		RepHighThreshold:  0.9,
		RepLowThreshold:   0.1,
		FormFatigueWeight: 0.5,
		HighlightPeak:     1,
		HighlightSteps: []HighlightStep{
			{Delay: 0.3, Level: 0.5},
			{Delay: 0.6, Level: 0},
		},
	}
}

// Validate checks the parameters
func (p Params) Validate() error {
	var errs []error
	if !(p.RepLowThreshold > 0 && p.RepLowThreshold < p.RepHighThreshold && p.RepHighThreshold < 1) {
		errs = append(errs, fmt.Errorf("rep thresholds must satisfy 0 < low < high < 1, got low=%v high=%v",
			p.RepLowThreshold, p.RepHighThreshold))
	}
	if p.FormFatigueWeight < 0 {
		errs = append(errs, fmt.Errorf("form_fatigue_weight must not be negative, got %v", p.FormFatigueWeight))
	}
	if p.HighlightPeak < 0 || p.HighlightPeak > 1 {
		errs = append(errs, fmt.Errorf("highlight_peak must be within [0, 1], got %v", p.HighlightPeak))
	}
	for i, step := range p.HighlightSteps {
		if step.Delay < 0 || step.Level < 0 || step.Level > 1 {
			errs = append(errs, fmt.Errorf("highlight step %d is invalid: delay=%v level=%v", i, step.Delay, step.Level))
		}
	}
	return errors.Join(errs...)
}

// RepEvent is the telemetry of one completed repetition
type RepEvent struct {
	SessionID        uuid.UUID            `json:"sessionId"`
	Exercise         catalog.ExerciseType `json:"exercise"`
	RepNumber        int                  `json:"repNumber"`
	SessionTime      float64              `json:"sessionTime"`
	EnergyExpended   float64              `json:"energyExpended"` // kcal
	PeakForce        float64              `json:"peakForce"`      // bodyweights
	MuscleActivation map[string]float64   `json:"muscleActivation"`
	FormQuality      float64              `json:"formQuality"`
}

// Frame is the read-only output of one tick
type Frame struct {
	SessionID  uuid.UUID            `json:"sessionId"`
	Exercise   catalog.ExerciseType `json:"exercise"`
	Time       float64              `json:"time"`
	Phase      phase.Resolution     `json:"phase"`
	Pose       kinematics.Pose      `json:"pose"`
	Physiology physiology.State     `json:"physiology"`
	Rep        *RepEvent            `json:"rep,omitempty"`
	Paused     bool                 `json:"paused"`
}

// Clone returns a deep copy of f
func (f Frame) Clone() Frame {
	out := f
	out.Pose = f.Pose.Clone()
	out.Physiology = f.Physiology.Clone()
	if f.Rep != nil {
		rep := *f.Rep
		rep.MuscleActivation = maps.Clone(f.Rep.MuscleActivation)
		out.Rep = &rep
	}
	return out
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithParams overrides the engine parameters
func WithParams(p Params) Option {
	return func(e *Engine) { e.params = p }
}

// WithPhysiology overrides the physiological model parameters
func WithPhysiology(p physiology.Params) Option {
	return func(e *Engine) { e.physiologyParams = p }
}

// WithKinematics overrides the pose solver parameters
func WithKinematics(p kinematics.Params) Option {
	return func(e *Engine) { e.kinematicsParams = p }
}

// WithExercise selects the initial exercise
func WithExercise(name string) Option {
	return func(e *Engine) { e.exercise, _ = catalog.ParseExerciseType(name) }
}

// Engine animates one figure through one session. It is single-threaded:
// callers must not invoke its methods concurrently.
type Engine struct {
	catalog          *catalog.Catalog
	params           Params
	physiologyParams physiology.Params
	kinematicsParams kinematics.Params
	logger           zerolog.Logger

	tracker *physiology.Tracker
	solver  *kinematics.Solver
	queue   *DeferredQueue
	emitter *RepEmitter

	sessionID uuid.UUID
	exercise  catalog.ExerciseType
	def       *catalog.Definition
	state     *physiology.State

	paused    bool
	stopped   bool
	ticked    bool
	lastT     float64
	peakForce float64
	last      Frame
}

// New creates an engine and starts its first session
func New(cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("engine requires a catalog")
	}
	e := &Engine{
		catalog:          cat,
		params:           DefaultParams(),
		physiologyParams: physiology.DefaultParams(),
		kinematicsParams: kinematics.DefaultParams(),
		logger:           zerolog.Nop(),
		exercise:         catalog.FallbackExercise,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.params.Validate(); err != nil {
		return nil, fmt.Errorf("engine params: %w", err)
	}
	if err := e.physiologyParams.Validate(); err != nil {
		return nil, fmt.Errorf("physiology params: %w", err)
	}
	if err := e.kinematicsParams.Validate(); err != nil {
		return nil, fmt.Errorf("kinematics params: %w", err)
	}

	e.tracker = physiology.NewTracker(e.physiologyParams)
	e.solver = kinematics.NewSolver(e.kinematicsParams, e.logger)
	e.queue = NewDeferredQueue()
	e.emitter = NewRepEmitter(e.params.RepHighThreshold, e.params.RepLowThreshold)
	e.def = cat.Get(e.exercise)
	e.Restart()
	return e, nil
}

// Tick advances the session to time t, in seconds since session start
// excluding paused time. While paused or stopped it changes nothing and
// returns the previous frame.
func (e *Engine) Tick(t float64) Frame {
	if e.paused || e.stopped {
		return e.last.Clone()
	}
	switch {
	case math.IsNaN(t) || math.IsInf(t, 0):
		t = e.lastT
	case t < 0:
		t = 0
	}

	dt := 0.0
	if e.ticked {
		if t < e.lastT {
			e.logger.Debug().Float64("from", e.lastT).Float64("to", t).Msg("Session clock moved backwards")
			e.emitter.Reset()
			e.peakForce = 0
		} else {
			dt = t - e.lastT
		}
	}

	e.queue.Drain(t, e.state)

	res := phase.Resolve(e.def, t)
	e.tracker.Advance(e.state, e.def, t, dt, res.PhaseName)
	pose := e.solver.Solve(e.exercise, res, e.state, e.def)

	var rep *RepEvent
	if e.emitter.Observe(res.CyclePhase) {
		rep = e.completeRep(t)
		e.peakForce = e.state.GroundContactForce
	} else {
		e.peakForce = math.Max(e.peakForce, e.state.GroundContactForce)
	}

	e.lastT, e.ticked = t, true
	e.last = Frame{
		SessionID:  e.sessionID,
		Exercise:   e.exercise,
		Time:       t,
		Phase:      res,
		Pose:       pose,
		Physiology: e.state.Clone(),
		Rep:        rep,
	}
	return e.last.Clone()
}

func (e *Engine) completeRep(t float64) *RepEvent {
	snap := e.tracker.CompleteRep(e.state, e.def)

	peak := e.peakForce
	if !(peak > 0) {
		peak = math.Max(e.def.Force.PeakMultiplier, 1)
	}
	ev := &RepEvent{
		SessionID:        e.sessionID,
		Exercise:         e.exercise,
		RepNumber:        snap.RepNumber,
		SessionTime:      t,
		EnergyExpended:   e.def.EnergyPerRep * (1 + snap.FatigueBefore),
		PeakForce:        peak,
		MuscleActivation: snap.Activation,
		FormQuality:      core.Clamp01(1 - snap.FatigueBefore*e.params.FormFatigueWeight),
	}

	e.queue.Schedule(t+e.tracker.DecayDelay(e.def), "muscle-decay", e.tracker.Decay)
	e.state.HighlightIntensity = e.params.HighlightPeak
	for _, step := range e.params.HighlightSteps {
		level := step.Level
		e.queue.Schedule(t+step.Delay, "highlight", func(s *physiology.State) {
			s.HighlightIntensity = level
		})
	}

	e.logger.Debug().
		Str("session", e.sessionID.String()).
		Str("exercise", string(e.exercise)).
		Int("rep", ev.RepNumber).
		Float64("fatigue", snap.FatigueAfter).
		Float64("form_quality", ev.FormQuality).
		Msg("Rep completed")
	return ev
}

// SetPaused pauses or resumes the session
func (e *Engine) SetPaused(paused bool) {
	if e.paused == paused {
		return
	}
	e.paused = paused
	e.last.Paused = paused
	e.logger.Debug().Bool("paused", paused).Float64("time", e.lastT).Msg("Pause state changed")
}

// Paused reports whether the session is paused
func (e *Engine) Paused() bool {
	return e.paused
}

// Stopped reports whether the session has ended
func (e *Engine) Stopped() bool {
	return e.stopped
}

// SetExercise switches the animated exercise. Unknown names select squat.
// Physiology carries over; rep detection starts afresh.
func (e *Engine) SetExercise(name string) catalog.ExerciseType {
	typ, ok := catalog.ParseExerciseType(name)
	if !ok {
		e.logger.Warn().Str("exercise", name).Msg("Unknown exercise type, falling back to squat")
	}
	if typ == e.exercise {
		return typ
	}
	e.exercise = typ
	e.def = e.catalog.Get(typ)
	e.emitter.Reset()
	e.peakForce = 0
	e.last.Exercise = typ
	e.logger.Info().Str("exercise", string(typ)).Msg("Exercise changed")
	return typ
}

// Exercise returns the current exercise type
func (e *Engine) Exercise() catalog.ExerciseType {
	return e.exercise
}

// Definition returns the current exercise definition
func (e *Engine) Definition() *catalog.Definition {
	return e.def
}

// SessionID returns the current session identifier
func (e *Engine) SessionID() uuid.UUID {
	return e.sessionID
}

// Restart begins a new session: fresh physiology, empty queue and a new
// session ID. The exercise selection is kept.
func (e *Engine) Restart() {
	e.sessionID = uuid.New()
	e.state = physiology.NewState()
	e.queue.Clear()
	e.emitter.Reset()
	e.paused, e.stopped, e.ticked = false, false, false
	e.lastT, e.peakForce = 0, 0
	e.last = Frame{
		SessionID:  e.sessionID,
		Exercise:   e.exercise,
		Phase:      phase.Resolve(e.def, 0),
		Pose:       kinematics.RestPose(e.def),
		Physiology: e.state.Clone(),
	}
	e.logger.Info().
		Str("session", e.sessionID.String()).
		Str("exercise", string(e.exercise)).
		Msg("Session started")
}

// Stop ends the session. Pending deferred actions are dropped and further
// ticks return the last frame until Restart.
func (e *Engine) Stop() {
	if e.stopped {
		return
	}
	dropped := e.queue.Len()
	e.queue.Clear()
	e.stopped = true
	e.logger.Info().
		Str("session", e.sessionID.String()).
		Int("reps", e.state.RepetitionCount).
		Int("dropped_actions", dropped).
		Msg("Session stopped")
}

// Snapshot returns a copy of the last frame
func (e *Engine) Snapshot() Frame {
	return e.last.Clone()
}

// PendingActions returns the number of scheduled deferred actions
func (e *Engine) PendingActions() int {
	return e.queue.Len()
}
