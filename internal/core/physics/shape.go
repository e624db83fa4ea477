// Package physics wraps a rigid-body simulation behind a handle-based
// adapter: bodies are added with a shape, mass and kind, stepped with a fixed
// substep integrator, and expose their pose for transform synchronization.
package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCapsule
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	default:
		return "unknown"
	}
}

// Shape is a collision-shape descriptor. Only the fields of the active kind
// are meaningful. Shapes are expected to match or approximate the mesh of the
// entity they are paired with.
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl32.Vec3 // box
	Radius      float32    // sphere, capsule
	Height      float32    // capsule cylinder section
}

func Box(hx, hy, hz float32) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: mgl32.Vec3{hx, hy, hz}}
}

func Sphere(radius float32) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

func Capsule(radius, height float32) Shape {
	return Shape{Kind: ShapeCapsule, Radius: radius, Height: height}
}

// Validate rejects geometrically degenerate shapes.
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeBox:
		if s.HalfExtents.X() <= 0 || s.HalfExtents.Y() <= 0 || s.HalfExtents.Z() <= 0 {
			return fmt.Errorf("physics: degenerate box half extents %v", s.HalfExtents)
		}
	case ShapeSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("physics: degenerate sphere radius %g", s.Radius)
		}
	case ShapeCapsule:
		if s.Radius <= 0 || s.Height < 0 {
			return fmt.Errorf("physics: degenerate capsule radius %g height %g", s.Radius, s.Height)
		}
	default:
		return fmt.Errorf("physics: unknown shape kind %d", s.Kind)
	}
	return nil
}

// bottomExtent is the distance from the body center to its lowest point,
// used for ground-plane contact.
func (s Shape) bottomExtent() float32 {
	switch s.Kind {
	case ShapeBox:
		return s.HalfExtents.Y()
	case ShapeSphere:
		return s.Radius
	case ShapeCapsule:
		return s.Height/2 + s.Radius
	default:
		return 0
	}
}
