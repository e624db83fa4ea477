package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyKind determines how a body participates in simulation and which way
// transform state flows each frame: static and dynamic bodies are
// physics-authoritative, kinematic bodies are controller-driven.
type BodyKind uint8

const (
	Static BodyKind = iota
	Dynamic
	Kinematic
)

func (k BodyKind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// Pose is the simulated position and orientation of a body. It mirrors the
// rendering Transform's position and rotation exactly; synchronization copies
// it bit for bit.
type Pose struct {
	Pos mgl32.Vec3
	Rot mgl32.Quat
}

func IdentityPose() Pose {
	return Pose{Rot: mgl32.QuatIdent()}
}

func (p Pose) finite() bool {
	for i := 0; i < 3; i++ {
		if !finite(p.Pos[i]) {
			return false
		}
	}
	return finite(p.Rot.W) && finite(p.Rot.V[0]) && finite(p.Rot.V[1]) && finite(p.Rot.V[2])
}

// BodyHandle is a generation-checked reference to a body slot. A handle made
// stale by RemoveBody is rejected with ErrInvalidHandle on every access.
type BodyHandle struct {
	index   uint32
	version uint32
}

type body struct {
	pose    Pose
	linVel  mgl32.Vec3
	angVel  mgl32.Vec3
	pending Pose // kinematic target applied at the start of the next step
	shape   Shape
	mass    float32
	kind    BodyKind

	hasPending bool
	alive      bool
	version    uint32
}

// maxAngularStep clamps angular motion per substep to keep orientation
// integration stable under large angular velocities.
const maxAngularStep = math.Pi / 4

// integrate advances the body by one substep of h seconds using semi-implicit
// Euler: velocity first, then position, then orientation.
func (b *body) integrate(gravity mgl32.Vec3, h float32) {
	b.linVel = b.linVel.Add(gravity.Mul(h))
	b.pose.Pos = b.pose.Pos.Add(b.linVel.Mul(h))
	b.pose.Rot = integrateOrientation(b.pose.Rot, b.angVel, h)
}

func integrateOrientation(q mgl32.Quat, angVel mgl32.Vec3, h float32) mgl32.Quat {
	ang := angVel.Len()
	if ang < 1e-8 {
		return q
	}
	if ang*h > maxAngularStep {
		ang = maxAngularStep / h
	}
	dq := mgl32.QuatRotate(ang*h, angVel.Mul(1/ang))
	return dq.Mul(q).Normalize()
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
