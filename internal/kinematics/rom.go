package kinematics

import (
	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
)

// ROM is a joint range of motion in radians
type ROM struct {
	Min  float64
	Max  float64
	Axis catalog.Axis
}

// Clamp limits an angle to the range
func (r ROM) Clamp(angle float64) float64 {
	return core.Clamp(angle, r.Min, r.Max)
}

// Span is the width of the range
func (r ROM) Span() float64 {
	return r.Max - r.Min
}

// At returns the angle at frac of the range, exact at both ends
func (r ROM) At(frac float64) float64 {
	switch {
	case !(frac > 0):
		return r.Min
	case frac >= 1:
		return r.Max
	default:
		return r.Min + r.Span()*frac
	}
}

// DefaultROM is the conservative range used when an exercise has no
// biomechanics entry for a joint. Included angles in degrees:
//
//	knee 80-170, hip 70-170, ankle 70-110, elbow 70-160,
//	shoulder 30-100, spine 150-180, neck 160-180
var DefaultROM = map[catalog.Joint]catalog.JointBiomechanics{
	catalog.JointKnee:     {Min: 80, Max: 170, Axis: catalog.AxisX},
	catalog.JointHip:      {Min: 70, Max: 170, Axis: catalog.AxisX},
	catalog.JointAnkle:    {Min: 70, Max: 110, Axis: catalog.AxisX},
	catalog.JointElbow:    {Min: 70, Max: 160, Axis: catalog.AxisX},
	catalog.JointShoulder: {Min: 30, Max: 100, Axis: catalog.AxisX},
	catalog.JointSpine:    {Min: 150, Max: 180, Axis: catalog.AxisX},
	catalog.JointNeck:     {Min: 160, Max: 180, Axis: catalog.AxisX},
}

// RangeFor returns the range of motion for a rig joint. ok is false when
// the definition has no entry and the default table was used.
func RangeFor(def *catalog.Definition, j JointName) (ROM, bool) {
	joint := j.Biomechanics()
	bio, ok := catalog.JointBiomechanics{}, false
	if def != nil {
		bio, ok = def.Joints[joint]
	}
	if !ok {
		bio = DefaultROM[joint]
	}
	axis := bio.Axis
	if !axis.Valid() {
		axis = catalog.AxisX
	}
	lo, hi := core.Radians(bio.Min), core.Radians(bio.Max)
	if lo > hi {
		lo, hi = hi, lo
	}
	return ROM{Min: lo, Max: hi, Axis: axis}, ok
}

// restFraction places each joint's rest angle within its range: 1 is
// fully extended (max), 0 fully flexed (min).
var restFraction = map[catalog.Joint]float64{
	catalog.JointKnee:     1,
	catalog.JointHip:      1,
	catalog.JointAnkle:    0.5,
	catalog.JointElbow:    1,
	catalog.JointShoulder: 0,
	catalog.JointSpine:    1,
	catalog.JointNeck:     1,
}

// footSpacing is the lateral offset of each foot from the root, in metres
const footSpacing = 0.12

// RestPose is the neutral standing pose for an exercise: zero root, every
// joint at its rest angle and the feet under the hips.
func RestPose(def *catalog.Definition) Pose {
	p := Pose{Joints: make(map[JointName]JointTransform, len(AllJoints()))}
	for _, j := range AllJoints() {
		rom, _ := RangeFor(def, j)
		angle := rom.At(restFraction[j.Biomechanics()])
		jt := JointTransform{Rotation: Vec3{}.WithComponent(rom.Axis, angle)}
		if j == LeftFoot || j == RightFoot {
			jt.Position = &Vec3{X: j.Side() * footSpacing}
		}
		p.Joints[j] = jt
	}
	return p
}
