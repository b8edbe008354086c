package phase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

// TestResolveBounds verifies progress and index stay in range for every
// exercise, including negative, zero and non-finite times.
func TestResolveBounds(t *testing.T) {
	cat := defaultCatalog(t)
	times := []float64{-5, 0, 0.001, 1.5, 2.999999, 3, 17.3, 1e6, math.NaN(), math.Inf(1), math.Inf(-1)}
	for i := 0; i < 500; i++ {
		times = append(times, float64(i)*0.037)
	}

	for _, typ := range cat.Types() {
		def := cat.Get(typ)
		for _, ts := range times {
			res := Resolve(def, ts)
			assert.GreaterOrEqual(t, res.CyclePhase, 0.0, "%s t=%v", typ, ts)
			assert.Less(t, res.CyclePhase, 1.0, "%s t=%v", typ, ts)
			assert.GreaterOrEqual(t, res.PhaseProgress, 0.0, "%s t=%v", typ, ts)
			assert.LessOrEqual(t, res.PhaseProgress, 1.0, "%s t=%v", typ, ts)
			assert.GreaterOrEqual(t, res.PhaseIndex, 0, "%s t=%v", typ, ts)
			assert.Less(t, res.PhaseIndex, len(def.Phases), "%s t=%v", typ, ts)
			assert.Equal(t, def.Phases[res.PhaseIndex], res.PhaseName)
		}
	}
}

// TestResolvePeriodic verifies resolution depends only on the position in
// the cycle. Times are dyadic so shifting by whole cycles is exact.
func TestResolvePeriodic(t *testing.T) {
	cat := defaultCatalog(t)
	for _, typ := range cat.Types() {
		def := cat.Get(typ)
		for _, ts := range []float64{0, 0.125, 0.5, 0.75, 1.25, 2.0625, 2.875} {
			want := Resolve(def, ts)
			for k := 1; k <= 5; k++ {
				got := Resolve(def, ts+float64(k)*def.Duration)
				assert.Equal(t, want, got, "%s t=%v k=%d", typ, ts, k)
			}
		}
	}
}

// TestResolveSquatTransitions walks one squat cycle in 50 ms steps and
// checks where the phase index changes.
func TestResolveSquatTransitions(t *testing.T) {
	def := defaultCatalog(t).Get(catalog.Squat)
	require.Equal(t, 3.0, def.Duration)

	type transition struct {
		at   float64
		from string
		to   string
	}
	var got []transition
	prev := Resolve(def, 0)
	assert.Equal(t, "preparation", prev.PhaseName)

	for k := 1; k <= 60; k++ {
		ts := float64(k) * 0.05
		res := Resolve(def, ts)
		if res.PhaseIndex != prev.PhaseIndex {
			got = append(got, transition{at: ts, from: prev.PhaseName, to: res.PhaseName})
		}
		prev = res
	}

	want := []transition{
		{0.3, "preparation", "eccentric"},
		{1.5, "eccentric", "isometric_hold"},
		{1.8, "isometric_hold", "concentric"},
		{2.7, "concentric", "recovery"},
		{3.0, "recovery", "preparation"},
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].at, got[i].at, 0.05+1e-9, "transition %d", i)
		assert.Equal(t, want[i].from, got[i].from)
		assert.Equal(t, want[i].to, got[i].to)
	}
}

func TestResolveZeroDuration(t *testing.T) {
	def := &catalog.Definition{Phases: []string{"a", "b"}, PhaseDistribution: []float64{0.5, 0.5}}
	res := Resolve(def, 1.2)
	assert.Equal(t, Resolution{PhaseName: "a"}, res)
	assert.Equal(t, Resolution{}, Resolve(nil, 1))
}

func TestLocate(t *testing.T) {
	dist := []float64{0.1, 0.4, 0.1, 0.3, 0.1}
	cases := []struct {
		cyclePhase   float64
		wantIndex    int
		wantProgress float64
	}{
		{0, 0, 0},
		{0.05, 0, 0.5},
		{0.3, 1, 0.5},
		{0.55, 2, 0.5},
		{0.95, 4, 0.5},
		{1.5, 4, 1},
		{-1, 0, 0},
	}
	for _, tc := range cases {
		idx, progress := Locate(dist, tc.cyclePhase)
		assert.Equal(t, tc.wantIndex, idx, "cyclePhase=%v", tc.cyclePhase)
		assert.InDelta(t, tc.wantProgress, progress, 1e-9, "cyclePhase=%v", tc.cyclePhase)
	}
}

// TestLocateShortDistribution verifies a distribution summing below 1
// clamps to the last phase instead of running off the end.
func TestLocateShortDistribution(t *testing.T) {
	idx, progress := Locate([]float64{0.5, 0.49}, 0.995)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1.0, progress)

	idx, progress = Locate([]float64{0, 1}, 0)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0.0, progress)

	idx, progress = Locate(nil, 0.5)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0.0, progress)
}
