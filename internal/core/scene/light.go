package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightKind uint8

const (
	Directional LightKind = iota
	Point
)

func (k LightKind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Point:
		return "point"
	default:
		return "unknown"
	}
}

// Light illuminates the scene. Directional lights have a constant direction
// and no attenuation, like the sun; point lights sit at a position and decay
// with distance by the configured coefficients. A shadow-casting light owns a
// light-space projection used to render its depth map.
type Light struct {
	Kind      LightKind
	Color     mgl32.Vec3
	Intensity float32

	// Direction is used by directional lights only.
	Direction mgl32.Vec3

	// Position and the attenuation coefficients are used by point lights only.
	Position  mgl32.Vec3
	Constant  float32
	Linear    float32
	Quadratic float32

	CastsShadow bool

	lightSpace      mgl32.Mat4
	lightSpaceValid bool
}

// NewDirectionalLight returns a white-by-default sun light along dir.
func NewDirectionalLight(dir mgl32.Vec3, color mgl32.Vec3, intensity float32) Light {
	return Light{
		Kind:      Directional,
		Color:     color,
		Intensity: intensity,
		Direction: dir.Normalize(),
	}
}

// NewPointLight returns a point light with the customary decay defaults.
func NewPointLight(pos mgl32.Vec3, color mgl32.Vec3, intensity float32) Light {
	return Light{
		Kind:      Point,
		Color:     color,
		Intensity: intensity,
		Position:  pos,
		Constant:  1,
		Linear:    0.09,
		Quadratic: 0.032,
	}
}

// directionalExtent bounds the region a directional shadow map covers.
const directionalExtent = 25.0

// LightSpace returns the light's view-projection matrix for shadow rendering,
// computing and caching it on first use. Directional lights use an
// orthographic volume centered on the origin; point lights a 90 degree
// perspective aimed along their strongest axis toward the scene center.
func (l *Light) LightSpace() mgl32.Mat4 {
	if l.lightSpaceValid {
		return l.lightSpace
	}
	switch l.Kind {
	case Directional:
		eye := l.Direction.Mul(-directionalExtent * 2)
		view := mgl32.LookAtV(eye, mgl32.Vec3{}, upFor(l.Direction))
		proj := mgl32.Ortho(-directionalExtent, directionalExtent,
			-directionalExtent, directionalExtent, 0.1, directionalExtent*4)
		l.lightSpace = proj.Mul4(view)
	case Point:
		dir := mgl32.Vec3{}.Sub(l.Position)
		if dir.Len() < 1e-6 {
			dir = mgl32.Vec3{0, -1, 0}
		}
		dir = dir.Normalize()
		view := mgl32.LookAtV(l.Position, l.Position.Add(dir), upFor(dir))
		proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
		l.lightSpace = proj.Mul4(view)
	}
	l.lightSpaceValid = true
	return l.lightSpace
}

// SetLightSpace overrides the cached light-space matrix, for callers that
// precompute a tighter volume.
func (l *Light) SetLightSpace(m mgl32.Mat4) {
	l.lightSpace = m
	l.lightSpaceValid = true
}

// InvalidateLightSpace forces recomputation after moving the light.
func (l *Light) InvalidateLightSpace() {
	l.lightSpaceValid = false
}

// upFor picks an up vector that is not collinear with dir.
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if abs32(dir.Y()) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
