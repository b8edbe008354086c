package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/kinematics"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	e, err := New(cat, opts...)
	require.NoError(t, err)
	return e
}

// TestTenSquatCyclesEmitTenReps steps 1/60 s across 30 s of squats and
// expects exactly one rep per 3 s cycle.
func TestTenSquatCyclesEmitTenReps(t *testing.T) {
	e := newTestEngine(t, WithExercise("squat"))

	var reps []*RepEvent
	for i := 1; i <= 1800; i++ {
		if f := e.Tick(float64(i) / 60); f.Rep != nil {
			reps = append(reps, f.Rep)
		}
	}

	require.Len(t, reps, 10)
	for i, rep := range reps {
		assert.Equal(t, i+1, rep.RepNumber)
		assert.InDelta(t, float64(i+1)*3, rep.SessionTime, 1e-9)
		assert.Equal(t, e.SessionID(), rep.SessionID)
	}
	assert.Equal(t, 10, e.Snapshot().Physiology.RepetitionCount)
}

// TestFatigueCapsAfterFiftyReps verifies fatigue never decreases and stops
// at 0.3.
func TestFatigueCapsAfterFiftyReps(t *testing.T) {
	e := newTestEngine(t)

	prev := 0.0
	reps := 0
	for i := 1; i <= 50*12; i++ {
		f := e.Tick(float64(i) * 0.25)
		assert.GreaterOrEqual(t, f.Physiology.FatigueFactor, prev)
		assert.LessOrEqual(t, f.Physiology.FatigueFactor, 0.3)
		prev = f.Physiology.FatigueFactor
		if f.Rep != nil {
			reps++
		}
	}
	assert.Equal(t, 50, reps)
	assert.Equal(t, 0.3, prev)
}

// TestRepEventTelemetry checks the contents of the first rep event.
func TestRepEventTelemetry(t *testing.T) {
	e := newTestEngine(t)
	def := e.Definition()

	var first, second *RepEvent
	for i := 1; i <= 360 && second == nil; i++ {
		f := e.Tick(float64(i) / 60)
		if f.Rep != nil {
			if first == nil {
				first = f.Rep
			} else {
				second = f.Rep
			}
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.InDelta(t, def.EnergyPerRep, first.EnergyExpended, 1e-12)
	assert.Equal(t, 1.0, first.FormQuality)
	assert.InDelta(t, def.EnergyPerRep*1.03, second.EnergyExpended, 1e-12)
	assert.InDelta(t, 1-0.03*0.5, second.FormQuality, 1e-12)

	assert.Greater(t, first.PeakForce, def.Force.GroundReactionMultiplier)
	assert.LessOrEqual(t, first.PeakForce, def.Force.GroundReactionMultiplier*def.Force.PeakMultiplier+1e-9)

	for _, m := range def.PrimaryMuscles {
		assert.Equal(t, 0.9, first.MuscleActivation[m], m)
	}
	for _, m := range def.SecondaryMuscles {
		assert.Equal(t, 0.6, first.MuscleActivation[m], m)
	}
}

// TestDeferredDecayAndHighlight verifies the scheduled mutations after a
// rep land at their due times and not before.
func TestDeferredDecayAndHighlight(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(2.9)
	f := e.Tick(3.0)
	require.NotNil(t, f.Rep)
	assert.Equal(t, 1.0, f.Physiology.HighlightIntensity)
	assert.Equal(t, 0.9, f.Physiology.MuscleActivation["quadriceps"])
	assert.Equal(t, []string{"highlight", "highlight", "muscle-decay"}, e.queue.Pending())

	f = e.Tick(3.25)
	assert.Equal(t, 1.0, f.Physiology.HighlightIntensity)
	f = e.Tick(3.35)
	assert.Equal(t, 0.5, f.Physiology.HighlightIntensity)
	f = e.Tick(3.65)
	assert.Equal(t, 0.0, f.Physiology.HighlightIntensity)

	f = e.Tick(4.4)
	assert.Equal(t, 0.9, f.Physiology.MuscleActivation["quadriceps"])
	f = e.Tick(4.5)
	assert.InDelta(t, 0.6, f.Physiology.MuscleActivation["quadriceps"], 1e-12)
	assert.InDelta(t, 0.3, f.Physiology.MuscleActivation["core"], 1e-12)
	assert.Equal(t, 0, e.PendingActions())
}

// TestPauseFreezesFrame verifies ticks while paused change nothing, and
// that deferred actions wait for the resume.
func TestPauseFreezesFrame(t *testing.T) {
	e := newTestEngine(t)
	for i := 1; i <= 181; i++ {
		e.Tick(float64(i) / 60)
	}
	require.Equal(t, 3, e.PendingActions())

	e.SetPaused(true)
	before := e.Snapshot()
	for _, ts := range []float64{3.1, 5, 50, 500} {
		got := e.Tick(ts)
		if diff := cmp.Diff(before, got); diff != "" {
			t.Fatalf("frame changed while paused (-before +after):\n%s", diff)
		}
	}
	assert.Equal(t, 3, e.PendingActions())
	assert.True(t, before.Paused)

	e.SetPaused(false)
	f := e.Tick(182.0 / 60)
	assert.False(t, f.Paused)
	assert.Greater(t, f.Time, before.Time)
}

// TestStopClearsQueue verifies ending a session drops pending mutations.
func TestStopClearsQueue(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(2.95)
	require.NotNil(t, e.Tick(3.0).Rep)
	require.Positive(t, e.PendingActions())

	e.Stop()
	assert.True(t, e.Stopped())
	assert.Equal(t, 0, e.PendingActions())

	last := e.Snapshot()
	assert.Empty(t, cmp.Diff(last, e.Tick(10)))

	id := e.SessionID()
	e.Restart()
	assert.NotEqual(t, id, e.SessionID())
	assert.False(t, e.Stopped())
	f := e.Tick(0.5)
	assert.Equal(t, 0, f.Physiology.RepetitionCount)
	assert.Equal(t, 0.0, f.Physiology.FatigueFactor)
}

// TestRestartDoesNotEmitSpuriousRep verifies the clock going back to zero
// is not mistaken for a cycle boundary.
func TestRestartDoesNotEmitSpuriousRep(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(2.95)
	e.Restart()
	assert.Nil(t, e.Tick(0.01).Rep)

	e.Tick(2.95)
	assert.Nil(t, e.Tick(0.02).Rep, "clock moving backwards resets detection")
}

// TestUnknownExerciseMatchesSquat drives two engines with identical clocks,
// one asked for an exercise that does not exist.
func TestUnknownExerciseMatchesSquat(t *testing.T) {
	squat := newTestEngine(t, WithExercise("squat"))
	wheel := newTestEngine(t, WithExercise("cartwheel"))
	assert.Equal(t, catalog.Squat, wheel.Exercise())

	for i := 1; i <= 400; i++ {
		ts := float64(i) / 60
		a, b := squat.Tick(ts), wheel.Tick(ts)
		if diff := cmp.Diff(a.Pose, b.Pose); diff != "" {
			t.Fatalf("pose differs at t=%v:\n%s", ts, diff)
		}
		require.Equal(t, a.Physiology.FatigueFactor, b.Physiology.FatigueFactor)
	}
}

// TestSetExerciseResetsBoundaryDetection verifies switching exercise mid
// cycle does not produce a rep from comparing phases of different cycles.
func TestSetExerciseResetsBoundaryDetection(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(2.95)
	assert.Equal(t, catalog.Burpee, e.SetExercise("burpee"))
	f := e.Tick(4.0)
	assert.Nil(t, f.Rep)
	assert.Equal(t, catalog.Burpee, f.Exercise)
	assert.Equal(t, "stand", f.Phase.PhaseName)

	assert.Equal(t, catalog.Squat, e.SetExercise("moonwalk"))
}

// TestSquatPhaseWalk walks one squat cycle in 50 ms steps through the
// engine and checks phase changes and the rep at wraparound.
func TestSquatPhaseWalk(t *testing.T) {
	e := newTestEngine(t)
	want := map[string]float64{
		"eccentric":      0.3,
		"isometric_hold": 1.5,
		"concentric":     1.8,
		"recovery":       2.7,
	}

	prev := e.Tick(0).Phase.PhaseName
	require.Equal(t, "preparation", prev)
	var repAt float64
	for k := 1; k <= 62; k++ {
		ts := float64(k) * 0.05
		f := e.Tick(ts)
		if f.Phase.PhaseName != prev {
			if at, ok := want[f.Phase.PhaseName]; ok {
				assert.InDelta(t, at, ts, 0.05+1e-9, f.Phase.PhaseName)
				delete(want, f.Phase.PhaseName)
			}
			prev = f.Phase.PhaseName
		}
		if f.Rep != nil {
			repAt = ts
		}
	}
	assert.Empty(t, want)
	assert.InDelta(t, 3.0, repAt, 1e-9)
}

func TestFrameIsACopy(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(2.95)
	f := e.Tick(3.0)
	require.NotNil(t, f.Rep)

	f.Physiology.MuscleActivation["quadriceps"] = -1
	f.Rep.MuscleActivation["quadriceps"] = -1
	delete(f.Pose.Joints, "leftKnee")

	snap := e.Snapshot()
	assert.Equal(t, 0.9, snap.Physiology.MuscleActivation["quadriceps"])
	assert.Equal(t, 0.9, snap.Rep.MuscleActivation["quadriceps"])
	assert.Contains(t, snap.Pose.Joints, kinematics.LeftKnee)
}

func TestNewValidatesParams(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	bad := DefaultParams()
	bad.RepLowThreshold = 0.95
	_, err = New(cat, WithParams(bad))
	assert.ErrorContains(t, err, "rep thresholds")

	_, err = New(nil)
	assert.Error(t, err)
}
