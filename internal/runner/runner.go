package runner

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/config"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/engine"
	"github.com/sebastiankruger/exercise-simulator/internal/opcua"
	"github.com/sebastiankruger/exercise-simulator/internal/telemetry"
)

// maxWallStep bounds the wall time a single step may add, so a stalled host
// does not skip whole repetitions.
const maxWallStep = 250 * time.Millisecond

// SessionRunner drives one engine session from wall-clock time. Session time
// advances by wall time scaled with the playback speed and stands still
// while paused. All methods are thread-safe.
type SessionRunner struct {
	config        config.Config
	runtimeConfig *config.RuntimeConfig
	catalog       *catalog.Catalog
	logger        zerolog.Logger

	engine    *engine.Engine
	collector *telemetry.Collector
	muscles   []string

	// OPC UA server, nil until SetupOPCUA
	opcuaServer *opcua.Server

	repListeners []func(engine.RepEvent)

	mu          sync.RWMutex
	sessionTime float64
	lastWall    time.Time
	frame       engine.Frame
}

// NewSessionRunner creates a runner and starts its first session
func NewSessionRunner(cfg config.Config, cat *catalog.Catalog, tunables config.Tunables, logger zerolog.Logger) (*SessionRunner, error) {
	runtimeCfg := config.NewRuntimeConfig(&cfg)

	opts := append(tunables.EngineOptions(),
		engine.WithLogger(logger),
		engine.WithExercise(string(runtimeCfg.GetExercise())),
	)
	eng, err := engine.New(cat, opts...)
	if err != nil {
		return nil, err
	}

	return &SessionRunner{
		config:        cfg,
		runtimeConfig: runtimeCfg,
		catalog:       cat,
		logger:        logger,
		engine:        eng,
		collector:     telemetry.NewCollector(),
		muscles:       Muscles(cat),
		frame:         eng.Snapshot(),
	}, nil
}

// SetupOPCUA creates the OPC UA server with one namespace per telemetry concern
func (r *SessionRunner) SetupOPCUA(port int, name string) error {
	srv, err := opcua.NewServer(port, name)
	if err != nil {
		return err
	}

	if err := srv.RegisterNamespace(core.NamespacePose, "Pose", "Figure pose", PoseNodes()); err != nil {
		return err
	}
	if err := srv.RegisterNamespace(core.NamespacePhysiology, "Physiology", "Simulated physiological state", PhysiologyNodes(r.muscles)); err != nil {
		return err
	}
	if err := srv.RegisterNamespace(core.NamespaceSession, "Session", "Session progress and summary", SessionNodes()); err != nil {
		return err
	}

	r.mu.Lock()
	r.opcuaServer = srv
	r.mu.Unlock()
	return nil
}

// OnRep registers a callback for every completed repetition. Callbacks run
// on the stepping goroutine and must not block.
func (r *SessionRunner) OnRep(fn func(engine.RepEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repListeners = append(r.repListeners, fn)
}

// StartOPCUA starts the OPC UA server
func (r *SessionRunner) StartOPCUA(ctx context.Context) error {
	if r.opcuaServer == nil {
		return nil
	}
	return r.opcuaServer.Start(ctx)
}

// StopOPCUA stops the OPC UA server
func (r *SessionRunner) StopOPCUA(ctx context.Context) error {
	if r.opcuaServer == nil {
		return nil
	}
	return r.opcuaServer.Stop(ctx)
}

// OPCUAServer returns the OPC UA server, or nil when not set up
func (r *SessionRunner) OPCUAServer() *opcua.Server {
	return r.opcuaServer
}

// Run steps the session on every tick until ctx is done
func (r *SessionRunner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	r.logger.Info().
		Dur("interval", r.config.TickInterval).
		Str("exercise", string(r.runtimeConfig.GetExercise())).
		Msg("Starting session loop")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Session loop stopped")
			return ctx.Err()
		case now := <-ticker.C:
			r.Step(now)
		}
	}
}

// Step advances the session to wall time now and publishes the frame
func (r *SessionRunner) Step(now time.Time) engine.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.runtimeConfig.Snapshot()
	r.applyRuntime(snap)

	if !r.lastWall.IsZero() && !r.engine.Paused() && !r.engine.Stopped() {
		if wall := now.Sub(r.lastWall); wall > 0 {
			r.sessionTime += math.Min(wall.Seconds(), maxWallStep.Seconds()) * snap.PlaybackSpeed
		}
	}
	r.lastWall = now

	frame := r.engine.Tick(r.sessionTime)
	if frame.Rep != nil {
		r.collector.Record(*frame.Rep)
		r.logger.Info().
			Str("exercise", string(frame.Rep.Exercise)).
			Int("rep", frame.Rep.RepNumber).
			Float64("energy_kcal", frame.Rep.EnergyExpended).
			Float64("peak_force", frame.Rep.PeakForce).
			Float64("form_quality", frame.Rep.FormQuality).
			Msg("Repetition completed")
		for _, fn := range r.repListeners {
			fn(*frame.Rep)
		}
	}
	r.frame = frame
	r.publish(frame)
	return frame.Clone()
}

// applyRuntime brings the engine in line with the runtime config. The caller
// holds r.mu.
func (r *SessionRunner) applyRuntime(snap config.RuntimeConfigSnapshot) {
	if snap.Exercise != "" && snap.Exercise != r.engine.Exercise() {
		r.engine.SetExercise(string(snap.Exercise))
	}
	if snap.Paused != r.engine.Paused() {
		r.engine.SetPaused(snap.Paused)
	}
}

func (r *SessionRunner) publish(frame engine.Frame) {
	if r.opcuaServer == nil {
		return
	}
	r.opcuaServer.UpdateNamespaceValues(core.NamespacePose, PoseValues(frame.Pose))
	r.opcuaServer.UpdateNamespaceValues(core.NamespacePhysiology, PhysiologyValues(frame.Physiology, r.muscles))
	r.opcuaServer.UpdateNamespaceValues(core.NamespaceSession, SessionValues(frame, r.collector.Summary(r.sessionTime)))
}

// Frame returns a copy of the latest frame
func (r *SessionRunner) Frame() engine.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frame.Clone()
}

// SessionTime returns the session clock in seconds
func (r *SessionRunner) SessionTime() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionTime
}

// Summary returns the aggregate of the current session
func (r *SessionRunner) Summary() telemetry.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := r.collector.Summary(r.sessionTime)
	if sum.SessionID == uuid.Nil {
		sum.SessionID = r.engine.SessionID()
	}
	return sum
}

// Stopped reports whether the session has ended
func (r *SessionRunner) Stopped() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engine.Stopped()
}

// SetExercise switches the exercise. Unknown names are rejected.
func (r *SessionRunner) SetExercise(name string) (catalog.ExerciseType, error) {
	typ, err := r.runtimeConfig.SetExercise(name)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyRuntime(r.runtimeConfig.Snapshot())
	r.frame = r.engine.Snapshot()
	return typ, nil
}

// SetPaused pauses or resumes the session
func (r *SessionRunner) SetPaused(paused bool) {
	r.runtimeConfig.SetPaused(paused)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyRuntime(r.runtimeConfig.Snapshot())
	r.frame = r.engine.Snapshot()
}

// SetPlaybackSpeed changes the session time multiplier
func (r *SessionRunner) SetPlaybackSpeed(speed float64) error {
	return r.runtimeConfig.SetPlaybackSpeed(speed)
}

// Restart begins a new session with the current exercise
func (r *SessionRunner) Restart() {
	r.runtimeConfig.SetPaused(false)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyRuntime(r.runtimeConfig.Snapshot())
	r.engine.Restart()
	r.collector.Reset()
	r.sessionTime = 0
	r.frame = r.engine.Snapshot()
}

// Stop ends the session. Steps keep returning the last frame until Restart.
func (r *SessionRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.Stop()
}

// RuntimeConfig returns the runtime configuration
func (r *SessionRunner) RuntimeConfig() *config.RuntimeConfig {
	return r.runtimeConfig
}

// Catalog returns the exercise catalog
func (r *SessionRunner) Catalog() *catalog.Catalog {
	return r.catalog
}
