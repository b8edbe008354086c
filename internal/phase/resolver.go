package phase

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
)

// Resolution is the position of a time value within an exercise cycle
type Resolution struct {
	CyclePhase    float64 `json:"cyclePhase"`    // fraction of the cycle elapsed, [0,1)
	PhaseIndex    int     `json:"phaseIndex"`    // index into the definition's phase list
	PhaseProgress float64 `json:"phaseProgress"` // fraction of the current phase elapsed, [0,1]
	PhaseName     string  `json:"phaseName"`
}

// Resolve maps an absolute session time onto the definition's cycle.
// It keeps no state: the same t and definition always give the same result,
// so restarts and exercise changes need nothing reset here.
func Resolve(def *catalog.Definition, t float64) Resolution {
	if def == nil {
		return Resolution{}
	}
	d := def.Duration
	if !(d > 0) || math.IsInf(d, 0) {
		return Resolution{PhaseName: def.PhaseName(0)}
	}
	if !(t > 0) || math.IsInf(t, 0) {
		t = 0
	}

	cyclePhase := math.Mod(t, d) / d
	if !(cyclePhase < 1) {
		cyclePhase = 0
	}

	idx, progress := Locate(def.PhaseDistribution, cyclePhase)
	return Resolution{
		CyclePhase:    cyclePhase,
		PhaseIndex:    idx,
		PhaseProgress: progress,
		PhaseName:     def.PhaseName(idx),
	}
}

// Locate finds the phase containing cyclePhase: the smallest index whose
// cumulative share reaches cyclePhase, clamped to the last phase when the
// distribution sums to slightly less than 1. Progress within the phase is
// clamped to [0,1]; a zero-length phase reports progress 0.
func Locate(distribution []float64, cyclePhase float64) (int, float64) {
	n := len(distribution)
	if n == 0 {
		return 0, 0
	}
	cyclePhase = core.Clamp01(cyclePhase)

	cum := make([]float64, n)
	floats.CumSum(cum, distribution)

	idx := n - 1
	for i, c := range cum {
		if c >= cyclePhase {
			idx = i
			break
		}
	}

	start := 0.0
	if idx > 0 {
		start = cum[idx-1]
	}
	width := distribution[idx]
	if !(width > 0) {
		return idx, 0
	}
	return idx, core.Clamp01((cyclePhase - start) / width)
}
