package kinematics

import (
	"github.com/sebastiankruger/exercise-simulator/internal/phase"
)

const (
	lungeStride = 0.7
	lungeDrop   = 0.4
)

var lungeTempo = tempo{eccentric: 0.5, isometric: 0, concentric: 0.5}

// solveLunge steps forward and sinks. The leading leg alternates every
// repetition, starting with the left.
func solveLunge(c *solveContext, res phase.Resolution) float64 {
	d := tempoFor(c.def, lungeTempo).depth(res.CyclePhase, c.ease)

	leadKnee, rearKnee := LeftKnee, RightKnee
	leadFoot, rearFoot := LeftFoot, RightFoot
	if c.state.RepetitionCount%2 == 1 {
		leadKnee, rearKnee = RightKnee, LeftKnee
		leadFoot, rearFoot = RightFoot, LeftFoot
	}

	c.bend(leadKnee, d)
	c.bend(rearKnee, d*0.9)
	c.bend(Pelvis, d*0.6)
	c.bend(Spine, d*0.1)
	c.flexAnkle(leadFoot, d)
	c.place(rearFoot, 0.5+0.5*d*c.rangeScale)
	c.raise(LeftShoulder, 0.3)
	c.raise(RightShoulder, 0.3)

	stride := lungeStride * d * c.rangeScale
	c.setFoot(leadFoot, Vec3{X: leadFoot.Side() * footSpacing, Z: stride})
	c.setFoot(rearFoot, Vec3{X: rearFoot.Side() * footSpacing, Z: -stride * 0.2})

	c.pose.Root.Position.Y = -lungeDrop * d * c.rangeScale
	c.pose.Root.Position.Z = stride * 0.4
	return d
}
