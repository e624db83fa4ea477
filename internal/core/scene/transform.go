// Package scene defines the component types attached to entities: transforms,
// meshes and materials, models, cameras, lights and rigidbody references.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the rendering-facing pose of an entity: position, rotation and
// component-wise scale. For physics-backed entities it mirrors the simulated
// pose and is written only by the sync system; everything else may drive it
// directly from game logic, never both in the same frame.
type Transform struct {
	Pos   mgl32.Vec3
	Rot   mgl32.Quat
	Scale mgl32.Vec3
}

// NewTransform returns an identity transform at the given position.
func NewTransform(pos mgl32.Vec3) Transform {
	return Transform{
		Pos:   pos,
		Rot:   mgl32.QuatIdent(),
		Scale: mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the world matrix as translate * rotate * scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Pos.X(), t.Pos.Y(), t.Pos.Z())
	m = m.Mul4(t.Rot.Mat4())
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
