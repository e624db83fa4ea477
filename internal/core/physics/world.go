package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidHandle is returned for any access through a removed or
	// never-issued body handle. It indicates a logic bug in calling code and
	// must be surfaced, not swallowed.
	ErrInvalidHandle = errors.New("physics: invalid body handle")

	// ErrNotKinematic is returned when SetPose is called on a body whose pose
	// the simulation owns.
	ErrNotKinematic = errors.New("physics: set pose on non-kinematic body")

	// ErrReentrantStep is returned when Step is called while a step is
	// already in flight.
	ErrReentrantStep = errors.New("physics: re-entrant step")
)

// World is the rigid-body simulation. All mutation happens through Step and
// SetPose, both driven from the frame orchestrator's single goroutine.
type World struct {
	bodies  []body
	freeIdx []uint32

	gravity     mgl32.Vec3
	substep     float32
	maxSubsteps int

	groundY     float32
	restitution float32
	hasGround   bool

	stepping bool
}

// NewWorld creates a simulation with the given gravity and fixed substep
// length. Step calls subdivide dt into at most maxSubsteps substeps of
// roughly substep seconds each.
func NewWorld(gravity mgl32.Vec3, substep float32, maxSubsteps int) *World {
	if substep <= 0 {
		substep = 1.0 / 120
	}
	if maxSubsteps <= 0 {
		maxSubsteps = 8
	}
	return &World{
		gravity:     gravity,
		substep:     substep,
		maxSubsteps: maxSubsteps,
	}
}

// SetGroundPlane installs an infinite horizontal collision plane at the given
// height. Dynamic bodies rest on it or bounce with the given restitution.
func (w *World) SetGroundPlane(y, restitution float32) {
	w.groundY = y
	w.restitution = restitution
	w.hasGround = true
}

// AddBody inserts a body and returns its handle. Dynamic bodies need a
// positive mass; mass zero denotes an immovable body and is only valid for
// static and kinematic kinds.
func (w *World) AddBody(shape Shape, mass float32, initial Pose, kind BodyKind) (BodyHandle, error) {
	if err := shape.Validate(); err != nil {
		return BodyHandle{}, err
	}
	if mass < 0 || !finite(mass) {
		return BodyHandle{}, fmt.Errorf("physics: invalid mass %g", mass)
	}
	if kind == Dynamic && mass == 0 {
		return BodyHandle{}, fmt.Errorf("physics: dynamic body requires positive mass")
	}
	if !initial.finite() {
		return BodyHandle{}, fmt.Errorf("physics: non-finite initial pose")
	}

	var idx uint32
	if n := len(w.freeIdx); n > 0 {
		idx = w.freeIdx[n-1]
		w.freeIdx = w.freeIdx[:n-1]
	} else {
		idx = uint32(len(w.bodies))
		w.bodies = append(w.bodies, body{})
	}
	b := &w.bodies[idx]
	b.version++
	b.alive = true
	b.shape = shape
	b.mass = mass
	b.kind = kind
	b.pose = initial
	b.linVel = mgl32.Vec3{}
	b.angVel = mgl32.Vec3{}
	b.hasPending = false
	return BodyHandle{index: idx, version: b.version}, nil
}

// RemoveBody releases the body and invalidates its handle.
func (w *World) RemoveBody(h BodyHandle) error {
	b, err := w.resolve(h)
	if err != nil {
		return err
	}
	b.alive = false
	w.freeIdx = append(w.freeIdx, h.index)
	return nil
}

// GetPose returns the authoritative post-step pose of the body.
func (w *World) GetPose(h BodyHandle) (Pose, error) {
	b, err := w.resolve(h)
	if err != nil {
		return Pose{}, err
	}
	return b.pose, nil
}

// SetPose stages a controller-driven pose for a kinematic body. The target
// takes effect at the start of the next Step, not immediately: calling code
// relies on kinematic motion reaching the simulation one frame late, so this
// buffering is part of the contract.
func (w *World) SetPose(h BodyHandle, pose Pose) error {
	b, err := w.resolve(h)
	if err != nil {
		return err
	}
	if b.kind != Kinematic {
		return ErrNotKinematic
	}
	if !pose.finite() {
		return fmt.Errorf("physics: non-finite pose for kinematic body")
	}
	b.pending = pose
	b.hasPending = true
	return nil
}

// SetVelocity sets the linear and angular velocity of a dynamic body.
func (w *World) SetVelocity(h BodyHandle, linear, angular mgl32.Vec3) error {
	b, err := w.resolve(h)
	if err != nil {
		return err
	}
	b.linVel = linear
	b.angVel = angular
	return nil
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int {
	n := 0
	for i := range w.bodies {
		if w.bodies[i].alive {
			n++
		}
	}
	return n
}

// Step advances the simulation by exactly dt seconds, internally subdividing
// into fixed substeps for stability. Kinematic targets staged since the last
// step are applied first. A body reaching a non-finite state aborts the step
// with an error; the world is left at the last finite substep.
func (w *World) Step(dt float32) error {
	if w.stepping {
		return ErrReentrantStep
	}
	if !finite(dt) || dt < 0 {
		return fmt.Errorf("physics: invalid step dt %g", dt)
	}
	if dt == 0 {
		return nil
	}
	w.stepping = true
	defer func() { w.stepping = false }()

	for i := range w.bodies {
		b := &w.bodies[i]
		if b.alive && b.hasPending {
			b.pose = b.pending
			b.hasPending = false
		}
	}

	n := int(dt/w.substep + 0.5)
	if n < 1 {
		n = 1
	}
	if n > w.maxSubsteps {
		n = w.maxSubsteps
	}
	h := dt / float32(n)

	for s := 0; s < n; s++ {
		for i := range w.bodies {
			b := &w.bodies[i]
			if !b.alive || b.kind != Dynamic {
				continue
			}
			b.integrate(w.gravity, h)
			if w.hasGround {
				w.resolveGround(b)
			}
			if !b.pose.finite() {
				return fmt.Errorf("physics: body %d reached non-finite pose", i)
			}
		}
	}
	return nil
}

// resolveGround clamps a dynamic body onto the ground plane and reflects its
// vertical velocity by the restitution factor.
func (w *World) resolveGround(b *body) {
	bottom := b.pose.Pos.Y() - b.shape.bottomExtent()
	if bottom >= w.groundY {
		return
	}
	b.pose.Pos[1] += w.groundY - bottom
	if b.linVel.Y() < 0 {
		b.linVel[1] = -b.linVel.Y() * w.restitution
		// Kill residual jitter once the bounce energy is spent.
		if b.linVel.Y() < 0.01 {
			b.linVel[1] = 0
		}
	}
}

func (w *World) resolve(h BodyHandle) (*body, error) {
	if int(h.index) >= len(w.bodies) {
		return nil, ErrInvalidHandle
	}
	b := &w.bodies[h.index]
	if !b.alive || b.version != h.version {
		return nil, ErrInvalidHandle
	}
	return b, nil
}
