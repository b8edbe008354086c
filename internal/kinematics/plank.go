package kinematics

import (
	"math"

	"github.com/sebastiankruger/exercise-simulator/internal/phase"
)

// solvePlank holds a static forearm plank. The root never translates
// vertically; the catalog phases only shape bracing and breathing.
func solvePlank(c *solveContext, res phase.Resolution) float64 {
	brace := 1.0
	switch res.PhaseIndex {
	case 0:
		brace = c.ease(res.PhaseProgress)
	case 2:
		brace = 1 - 0.3*math.Sin(math.Pi*res.PhaseProgress)
	}

	c.place(LeftElbow, 0.5)
	c.place(RightElbow, 0.5)
	c.place(LeftShoulder, 0.7)
	c.place(RightShoulder, 0.7)

	sag := c.state.FatigueFactor*0.5 + (1-brace)*0.2
	c.bend(Pelvis, sag)
	c.bend(Spine, 0.3*c.state.BreathingPhase+sag*0.5)
	c.bend(LeftKnee, 0)
	c.bend(RightKnee, 0)
	c.place(Head, 0.8)

	c.pose.Root.Rotation.X = proneAngle
	return 0
}
