package kinematics

import (
	"github.com/sebastiankruger/exercise-simulator/internal/phase"
)

const (
	proneAngle = -1.4 // root pitch of a horizontal body, radians
	pushupDrop = 0.3
)

var pushupTempo = tempo{eccentric: 0.4, isometric: 0.1, concentric: 0.5}

func solvePushup(c *solveContext, res phase.Resolution) float64 {
	d := tempoFor(c.def, pushupTempo).depth(res.CyclePhase, c.ease)

	c.bend(LeftElbow, d)
	c.bend(RightElbow, d)
	c.place(LeftShoulder, 0.6-0.4*d*c.rangeScale)
	c.place(RightShoulder, 0.6-0.4*d*c.rangeScale)

	// rigid plank line; the hips give a little as fatigue builds
	c.bend(Pelvis, c.state.FatigueFactor*0.2)
	c.bend(Spine, c.state.FatigueFactor*0.1)
	c.bend(LeftKnee, 0)
	c.bend(RightKnee, 0)

	c.pose.Root.Rotation.X = proneAngle
	c.pose.Root.Position.Y = -pushupDrop * d * c.rangeScale
	return d
}
