package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/internal/core/ecs"
)

// ErrMultipleActiveCameras is returned when activating a camera while another
// one is already active. At most one camera per render target may be active;
// the policy here is explicit rejection, not a silent tie-break.
var ErrMultipleActiveCameras = errors.New("scene: another camera is already active")

// Camera holds view parameters; position and orientation come from the
// entity's Transform. The geometry pass renders from the single active
// camera and no-ops when none is active.
type Camera struct {
	Fov    float32 // vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32
	Active bool
}

// NewCamera returns a camera with common defaults, inactive.
func NewCamera(aspect float32) Camera {
	return Camera{Fov: 60, Aspect: aspect, Near: 0.1, Far: 1000}
}

// View derives the view matrix from the owning entity's transform by
// inverting its rigid motion; scale is deliberately ignored.
func (c *Camera) View(t *Transform) mgl32.Mat4 {
	rot := t.Rot.Mat4().Transpose()
	return rot.Mul4(mgl32.Translate3D(-t.Pos.X(), -t.Pos.Y(), -t.Pos.Z()))
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

// ActivateCamera flags e's camera as active. It fails with
// ErrMultipleActiveCameras if a different entity's camera is already active,
// and with ecs.ErrUnknownEntity if e has no camera.
func ActivateCamera(cameras *ecs.Store[Camera], e ecs.Entity) error {
	cam, ok := cameras.Get(e)
	if !ok {
		return ecs.ErrUnknownEntity
	}
	for _, other := range cameras.Entities() {
		if other == e {
			continue
		}
		if c, ok := cameras.Get(other); ok && c.Active {
			return ErrMultipleActiveCameras
		}
	}
	cam.Active = true
	return nil
}

// DeactivateCamera clears e's active flag; a no-op if e has no camera.
func DeactivateCamera(cameras *ecs.Store[Camera], e ecs.Entity) {
	if cam, ok := cameras.Get(e); ok {
		cam.Active = false
	}
}

// ActiveCamera returns the single active camera and its entity, or false when
// none is active.
func ActiveCamera(cameras *ecs.Store[Camera]) (ecs.Entity, *Camera, bool) {
	for _, e := range cameras.Entities() {
		if cam, ok := cameras.Get(e); ok && cam.Active {
			return e, cam, true
		}
	}
	return ecs.Entity{}, nil, false
}
