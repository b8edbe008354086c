package kinematics

import (
	"github.com/sebastiankruger/exercise-simulator/internal/phase"
)

const squatDrop = 0.45 // metres of pelvis travel at full depth

var squatTempo = tempo{eccentric: 0.5, isometric: 0, concentric: 0.5}

// solveSquat splits the whole cycle into descent and ascent, ignoring the
// catalog phases
func solveSquat(c *solveContext, res phase.Resolution) float64 {
	d := tempoFor(c.def, squatTempo).depth(res.CyclePhase, c.ease)

	c.bend(LeftKnee, d)
	c.bend(RightKnee, d)
	c.bend(Pelvis, d)
	c.bend(Spine, d*0.5)
	c.bend(Torso, d*0.3)
	c.flexAnkle(LeftFoot, d)
	c.flexAnkle(RightFoot, d)

	// arms reach forward as a counterweight
	c.raise(LeftShoulder, d)
	c.raise(RightShoulder, d)
	c.bend(LeftElbow, d*0.2)
	c.bend(RightElbow, d*0.2)

	c.pose.Root.Position.Y = -squatDrop * d * c.rangeScale
	return d
}
