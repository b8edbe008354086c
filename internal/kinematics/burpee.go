package kinematics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/phase"
)

// Burpee stages, in cycle order
const (
	burpeeStand = iota
	burpeeSquat
	burpeeKickback
	burpeePushup
	burpeeRecovery
	burpeeJump
	burpeeStages
)

var defaultBurpeeDistribution = []float64{0.1, 0.15, 0.15, 0.25, 0.15, 0.2}

const (
	burpeeCrouch     = 0.5  // root drop at the bottom of the squat
	burpeePlankDrop  = 0.75 // root drop once the legs are kicked back
	burpeePushDip    = 0.2
	burpeeKickReach  = 0.9 // feet travel backwards into the plank
	burpeeJumpHeight = 0.35
	burpeeTakeoff    = 0.4 // share of the jump stage spent extending
)

// burpeeSolver is the composite burpee movement: six stages, each with its
// own easing and joint targets. It segments the cycle itself from the
// definition's distribution rather than trusting the caller's phase index.
type burpeeSolver struct {
	resetWindow float64
}

func newBurpeeSolver(resetWindow float64) *burpeeSolver {
	return &burpeeSolver{resetWindow: resetWindow}
}

// segment returns the stage and stage progress for a cycle phase. A
// distribution that is not six valid fractions falls back to the default.
func (b *burpeeSolver) segment(def *catalog.Definition, cyclePhase float64) (int, float64) {
	dist := defaultBurpeeDistribution
	if d := def.PhaseDistribution; len(d) == burpeeStages && floats.Min(d) >= 0 &&
		math.Abs(floats.Sum(d)-1) <= catalog.DistributionEpsilon {
		dist = d
	}
	return phase.Locate(dist, cyclePhase)
}

func (b *burpeeSolver) solve(c *solveContext, res phase.Resolution) float64 {
	stage, progress := b.segment(c.def, res.CyclePhase)
	return b.solveStage(c, stage, progress)
}

// solveStage poses one stage. The opening slice of the stand stage is the
// exact rest pose so nothing carries over from the previous jump.
func (b *burpeeSolver) solveStage(c *solveContext, stage int, progress float64) float64 {
	if stage == burpeeStand && progress < b.resetWindow {
		c.reset()
		return 0
	}

	switch stage {
	case burpeeStand:
		return b.stand(c, (progress-b.resetWindow)/(1-b.resetWindow))
	case burpeeSquat:
		return b.squat(c, progress)
	case burpeeKickback:
		return b.kickback(c, progress)
	case burpeePushup:
		return b.pushup(c, progress)
	case burpeeRecovery:
		return b.recovery(c, progress)
	case burpeeJump:
		return b.jump(c, progress)
	default:
		c.reset()
		return 0
	}
}

// stand sinks slightly in anticipation of the squat
func (b *burpeeSolver) stand(c *solveContext, p float64) float64 {
	dip := 0.15 * QuadIn(p)
	c.bend(LeftKnee, dip)
	c.bend(RightKnee, dip)
	c.bend(Pelvis, dip)
	c.pose.Root.Position.Y = -burpeeCrouch * dip
	return dip
}

func (b *burpeeSolver) squat(c *solveContext, p float64) float64 {
	e := QuadInOut(p)
	depth := core.Lerp(0.15, 1, e)
	c.bend(LeftKnee, depth)
	c.bend(RightKnee, depth)
	c.bend(Pelvis, depth)
	c.bend(Spine, 0.6*e)
	c.flexAnkle(LeftFoot, depth)
	c.flexAnkle(RightFoot, depth)
	c.raise(LeftShoulder, 0.5*e)
	c.raise(RightShoulder, 0.5*e)
	c.pose.Root.Position.Y = -burpeeCrouch * depth
	return depth
}

func (b *burpeeSolver) kickback(c *solveContext, p float64) float64 {
	e := CubicInOut(p)
	b.plankTransition(c, e)
	return 0.6 * (1 - e)
}

func (b *burpeeSolver) pushup(c *solveContext, p float64) float64 {
	dip := math.Sin(math.Pi * core.Clamp01(p))
	b.plankTransition(c, 1)
	c.bend(LeftElbow, dip)
	c.bend(RightElbow, dip)
	c.pose.Root.Position.Y = -burpeePlankDrop - burpeePushDip*dip
	return 0.5 * dip
}

func (b *burpeeSolver) recovery(c *solveContext, p float64) float64 {
	e := CubicInOut(p)
	b.plankTransition(c, 1-e)
	return 0.6 * e
}

// plankTransition blends from the bottom of the squat (0) to a straight
// plank with the feet kicked back (1)
func (b *burpeeSolver) plankTransition(c *solveContext, e float64) {
	legs := 1 - e
	c.bend(LeftKnee, legs)
	c.bend(RightKnee, legs)
	c.bend(Pelvis, core.Lerp(1, 0.05, e))
	c.bend(Spine, 0.6*legs)
	c.flexAnkle(LeftFoot, legs)
	c.flexAnkle(RightFoot, legs)
	c.raise(LeftShoulder, core.Lerp(0.5, 0.6, e))
	c.raise(RightShoulder, core.Lerp(0.5, 0.6, e))

	reach := -burpeeKickReach * e
	c.setFoot(LeftFoot, Vec3{X: -footSpacing, Z: reach})
	c.setFoot(RightFoot, Vec3{X: footSpacing, Z: reach})

	c.pose.Root.Rotation.X = proneAngle * e
	c.pose.Root.Position.Y = core.Lerp(-burpeeCrouch, -burpeePlankDrop, e)
}

// jump extends out of the crouch, then leaves the ground with the arms
// overhead and lands standing
func (b *burpeeSolver) jump(c *solveContext, p float64) float64 {
	c.raise(LeftShoulder, 1)
	c.raise(RightShoulder, 1)

	if p < burpeeTakeoff {
		e := QuadIn(p / burpeeTakeoff)
		c.bend(LeftKnee, 1-e)
		c.bend(RightKnee, 1-e)
		c.bend(Pelvis, 1-e)
		c.pose.Root.Position.Y = -burpeeCrouch * (1 - e)
		return e
	}

	h := burpeeJumpHeight * math.Sin(math.Pi*(p-burpeeTakeoff)/(1-burpeeTakeoff))
	c.place(LeftFoot, 0.9)
	c.place(RightFoot, 0.9)
	c.setFoot(LeftFoot, Vec3{X: -footSpacing, Y: h})
	c.setFoot(RightFoot, Vec3{X: footSpacing, Y: h})
	c.pose.Root.Position.Y = h
	c.airborne = h > 0
	return 0
}
