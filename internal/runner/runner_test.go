package runner

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/config"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/engine"
	"github.com/sebastiankruger/exercise-simulator/internal/kinematics"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newRunner(t *testing.T, exercise string) *SessionRunner {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	cfg := config.Config{
		SimulatorName: "test",
		OPCUAPort:     4840,
		TickInterval:  time.Millisecond,
		PlaybackSpeed: 1,
		Exercise:      exercise,
	}
	r, err := NewSessionRunner(cfg, cat, config.DefaultTunables(), zerolog.Nop())
	require.NoError(t, err)
	return r
}

// steps advances the runner n times by d of wall time, starting after at
func steps(r *SessionRunner, at time.Time, n int, d time.Duration) time.Time {
	for i := 0; i < n; i++ {
		at = at.Add(d)
		r.Step(at)
	}
	return at
}

// TestSessionTimeFollowsWallClock verifies session time accumulates wall
// time and reps are summarised.
func TestSessionTimeFollowsWallClock(t *testing.T) {
	r := newRunner(t, "squat")
	r.Step(t0)
	assert.Zero(t, r.SessionTime())

	steps(r, t0, 40, 100*time.Millisecond)
	assert.InDelta(t, 4.0, r.SessionTime(), 1e-9)
	assert.Equal(t, 1, r.Summary().TotalReps)
	assert.Equal(t, 1, r.Frame().Physiology.RepetitionCount)
}

func TestOnRepListeners(t *testing.T) {
	r := newRunner(t, "squat")
	var got []engine.RepEvent
	r.OnRep(func(ev engine.RepEvent) { got = append(got, ev) })

	r.Step(t0)
	steps(r, t0, 70, 100*time.Millisecond)
	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2}, []int{got[0].RepNumber, got[1].RepNumber})
	assert.Equal(t, r.Frame().SessionID, got[0].SessionID)
}

func TestPlaybackSpeedScalesSessionTime(t *testing.T) {
	r := newRunner(t, "squat")
	require.NoError(t, r.SetPlaybackSpeed(2))
	assert.Error(t, r.SetPlaybackSpeed(20))

	r.Step(t0)
	steps(r, t0, 10, 100*time.Millisecond)
	assert.InDelta(t, 2.0, r.SessionTime(), 1e-9)
}

// TestPausedTimeIsExcluded verifies the session clock stands still while
// paused and resumes where it stopped.
func TestPausedTimeIsExcluded(t *testing.T) {
	r := newRunner(t, "squat")
	r.Step(t0)
	at := steps(r, t0, 5, 100*time.Millisecond)
	before := r.Frame()

	r.SetPaused(true)
	assert.True(t, r.Frame().Paused)
	at = steps(r, at, 20, 100*time.Millisecond)
	assert.InDelta(t, 0.5, r.SessionTime(), 1e-9)
	assert.Equal(t, before.Pose, r.Frame().Pose)

	r.SetPaused(false)
	steps(r, at, 5, 100*time.Millisecond)
	assert.InDelta(t, 1.0, r.SessionTime(), 1e-9)
	assert.False(t, r.Frame().Paused)
}

// TestPauseFromRuntimeConfig verifies changes made directly on the runtime
// config are applied on the next step.
func TestPauseFromRuntimeConfig(t *testing.T) {
	r := newRunner(t, "squat")
	r.Step(t0)
	r.RuntimeConfig().SetPaused(true)
	steps(r, t0, 3, 100*time.Millisecond)
	assert.Zero(t, r.SessionTime())
	assert.True(t, r.Frame().Paused)
}

func TestWallStepIsBounded(t *testing.T) {
	r := newRunner(t, "squat")
	r.Step(t0)
	r.Step(t0.Add(10 * time.Second))
	assert.InDelta(t, maxWallStep.Seconds(), r.SessionTime(), 1e-9)

	// a clock that goes backwards adds nothing
	r.Step(t0)
	assert.InDelta(t, maxWallStep.Seconds(), r.SessionTime(), 1e-9)
}

func TestSetExercise(t *testing.T) {
	r := newRunner(t, "squat")
	_, err := r.SetExercise("cartwheel")
	assert.Error(t, err)
	assert.Equal(t, catalog.Squat, r.Frame().Exercise)

	typ, err := r.SetExercise("Pushup")
	require.NoError(t, err)
	assert.Equal(t, catalog.Pushup, typ)
	assert.Equal(t, catalog.Pushup, r.Frame().Exercise)

	r.Step(t0)
	assert.Equal(t, catalog.Pushup, r.Frame().Exercise)
}

// TestRestartStartsNewSession verifies restart clears clock, summary and
// pause, and issues a new session ID.
func TestRestartStartsNewSession(t *testing.T) {
	r := newRunner(t, "squat")
	r.Step(t0)
	at := steps(r, t0, 40, 100*time.Millisecond)
	first := r.Frame().SessionID
	require.Equal(t, 1, r.Summary().TotalReps)
	r.SetPaused(true)

	r.Restart()
	assert.Zero(t, r.SessionTime())
	assert.Zero(t, r.Summary().TotalReps)
	assert.NotEqual(t, first, r.Frame().SessionID)
	assert.Equal(t, r.Frame().SessionID, r.Summary().SessionID)
	assert.False(t, r.RuntimeConfig().IsPaused())

	steps(r, at, 3, 100*time.Millisecond)
	assert.InDelta(t, 0.3, r.SessionTime(), 1e-9)
	assert.Zero(t, r.Frame().Physiology.RepetitionCount)
}

func TestStopFreezesSession(t *testing.T) {
	r := newRunner(t, "squat")
	r.Step(t0)
	at := steps(r, t0, 5, 100*time.Millisecond)
	r.Stop()
	assert.True(t, r.Stopped())

	steps(r, at, 5, 100*time.Millisecond)
	assert.InDelta(t, 0.5, r.SessionTime(), 1e-9)
}

// TestPublishesToOPCUA verifies every step mirrors the frame into the
// registered namespaces without a running server.
func TestPublishesToOPCUA(t *testing.T) {
	r := newRunner(t, "lunge")
	require.NoError(t, r.SetupOPCUA(4840, "test"))
	srv := r.OPCUAServer()
	require.NotNil(t, srv)

	r.Step(t0)
	steps(r, t0, 40, 100*time.Millisecond)

	v, ok := srv.GetNamespaceValue(core.NamespaceSession, "Exercise")
	require.True(t, ok)
	assert.Equal(t, "lunge", v)

	v, ok = srv.GetNamespaceValue(core.NamespacePhysiology, "RepetitionCount")
	require.True(t, ok)
	assert.Equal(t, int32(r.Frame().Physiology.RepetitionCount), v)

	v, ok = srv.GetNamespaceValue(core.NamespacePose, string(kinematics.LeftKnee)+".RotationX")
	require.True(t, ok)
	assert.Equal(t, r.Frame().Pose.Joints[kinematics.LeftKnee].Rotation.X, v)

	v, ok = srv.GetNamespaceValue(core.NamespacePhysiology, "Muscle.quadriceps")
	require.True(t, ok)
	assert.IsType(t, 0.0, v)

	assert.NoError(t, r.StopOPCUA(context.Background()))
}

func TestRunStopsWithContext(t *testing.T) {
	r := newRunner(t, "plank")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, r.SessionTime(), 0.0)
}

// TestNodesCoverValues verifies every published value has a registered node.
func TestNodesCoverValues(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	names := func(nodes []core.NodeDefinition) map[string]bool {
		out := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			out[n.Name] = true
		}
		return out
	}

	poseNodes := names(PoseNodes())
	for name := range PoseValues(kinematics.RestPose(cat.Get(catalog.Squat))) {
		assert.True(t, poseNodes[name], name)
	}

	muscles := Muscles(cat)
	assert.Contains(t, muscles, "quadriceps")
	assert.IsIncreasing(t, muscles)

	r := newRunner(t, "squat")
	frame := r.Step(t0)
	physNodes := names(PhysiologyNodes(muscles))
	for name := range PhysiologyValues(frame.Physiology, muscles) {
		assert.True(t, physNodes[name], name)
	}
	sessionNodes := names(SessionNodes())
	for name := range SessionValues(frame, r.Summary()) {
		assert.True(t, sessionNodes[name], name)
	}
}
