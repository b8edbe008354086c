package kinematics

import (
	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
)

// Vec3 is a 3-component vector. Rotations are Euler angles in radians.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Component returns the component along axis
func (v Vec3) Component(axis catalog.Axis) float64 {
	switch axis {
	case catalog.AxisY:
		return v.Y
	case catalog.AxisZ:
		return v.Z
	default:
		return v.X
	}
}

// WithComponent returns v with the component along axis replaced
func (v Vec3) WithComponent(axis catalog.Axis, value float64) Vec3 {
	switch axis {
	case catalog.AxisY:
		v.Y = value
	case catalog.AxisZ:
		v.Z = value
	default:
		v.X = value
	}
	return v
}

// Transform is a position and rotation
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
}

// JointName identifies a joint of the rig
type JointName string

const (
	Head          JointName = "head"
	Torso         JointName = "torso"
	Pelvis        JointName = "pelvis"
	Spine         JointName = "spine"
	LeftShoulder  JointName = "leftShoulder"
	RightShoulder JointName = "rightShoulder"
	LeftElbow     JointName = "leftElbow"
	RightElbow    JointName = "rightElbow"
	LeftKnee      JointName = "leftKnee"
	RightKnee     JointName = "rightKnee"
	LeftFoot      JointName = "leftFoot"
	RightFoot     JointName = "rightFoot"
)

// AllJoints lists the rig joints in a stable order
func AllJoints() []JointName {
	return []JointName{
		Head, Torso, Pelvis, Spine,
		LeftShoulder, RightShoulder, LeftElbow, RightElbow,
		LeftKnee, RightKnee, LeftFoot, RightFoot,
	}
}

// Biomechanics returns the anatomical joint whose range of motion limits
// the rig joint
func (j JointName) Biomechanics() catalog.Joint {
	switch j {
	case LeftKnee, RightKnee:
		return catalog.JointKnee
	case Pelvis:
		return catalog.JointHip
	case LeftFoot, RightFoot:
		return catalog.JointAnkle
	case LeftElbow, RightElbow:
		return catalog.JointElbow
	case LeftShoulder, RightShoulder:
		return catalog.JointShoulder
	case Head:
		return catalog.JointNeck
	default:
		return catalog.JointSpine
	}
}

// Side is -1 for left-side joints, +1 for right-side joints and 0 for the
// midline
func (j JointName) Side() float64 {
	switch j {
	case LeftShoulder, LeftElbow, LeftKnee, LeftFoot:
		return -1
	case RightShoulder, RightElbow, RightKnee, RightFoot:
		return 1
	default:
		return 0
	}
}

// JointTransform is the local transform of one joint. Position is only set
// for the feet.
type JointTransform struct {
	Rotation Vec3  `json:"rotation"`
	Position *Vec3 `json:"position,omitempty"`
}

// Pose is the per-tick output of the solver. It has no identity and is
// never retained by the engine beyond the last frame.
type Pose struct {
	Root   Transform                    `json:"root"`
	Joints map[JointName]JointTransform `json:"joints"`
}

// Clone returns a deep copy of p
func (p Pose) Clone() Pose {
	out := Pose{Root: p.Root, Joints: make(map[JointName]JointTransform, len(p.Joints))}
	for name, jt := range p.Joints {
		if jt.Position != nil {
			pos := *jt.Position
			jt.Position = &pos
		}
		out.Joints[name] = jt
	}
	return out
}

// Angle returns the joint's rotation along the axis of its range of motion
func (p Pose) Angle(def *catalog.Definition, j JointName) float64 {
	rom, _ := RangeFor(def, j)
	return p.Joints[j].Rotation.Component(rom.Axis)
}
