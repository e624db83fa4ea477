// Package render turns scene state into GPU command streams: a depth-only
// shadow pass per casting light feeding a forward geometry pass from the
// active camera. The GPU itself sits behind the Device interface; command
// visibility follows submission order, so shadow depth writes are readable by
// the geometry pass in the same frame without extra synchronization.
package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/lumen3d/lumen/internal/core/scene"
)

// ErrShadowTarget wraps a depth-target allocation failure. The pipeline
// cannot proceed without its render targets, so callers treat it as fatal.
var ErrShadowTarget = errors.New("render: shadow depth target allocation failed")

// ShaderID is an opaque handle to a compiled shader program owned by the
// shader compilation subsystem.
type ShaderID uuid.UUID

func NewShaderID() ShaderID {
	return ShaderID(uuid.New())
}

// DepthTargetID is an opaque handle to an offscreen depth texture. The zero
// value addresses the default framebuffer when used as a pass target.
type DepthTargetID uuid.UUID

type PassKind uint8

const (
	PassShadow PassKind = iota
	PassGeometry
)

type CullMode uint8

const (
	CullBack CullMode = iota
	CullNone
)

type CompareOp uint8

const (
	CompareLess CompareOp = iota
	CompareLessEqual
)

// PassDesc configures one render pass. A nil ClearColor leaves the color
// attachment untouched (shadow passes have no color output at all).
type PassDesc struct {
	Kind       PassKind
	Target     DepthTargetID
	ClearColor *mgl32.Vec4
	ClearDepth bool
}

// ShadowUniforms is the uniform contract of the shadow shader.
type ShadowUniforms struct {
	LightSpace mgl32.Mat4
	Model      mgl32.Mat4
}

// LightParams is one light's contribution as bound to the geometry shader.
// Color carries the intensity premultiplied.
type LightParams struct {
	Kind        scene.LightKind
	Color       mgl32.Vec3
	Direction   mgl32.Vec3 // directional only
	Position    mgl32.Vec3 // point only
	Attenuation mgl32.Vec3 // constant, linear, quadratic; point only
}

// GeometryUniforms is the uniform contract of the geometry shader.
type GeometryUniforms struct {
	View       mgl32.Mat4
	Proj       mgl32.Mat4
	Model      mgl32.Mat4
	Material   scene.Material
	Lights     []LightParams
	LightSpace []mgl32.Mat4 // one per bound shadow map, same order
}

// Device is the boundary to the GPU layer. Submission is fire-and-forget from
// the CPU's perspective; the implementation must preserve program order.
type Device interface {
	// CreateDepthTarget allocates a square offscreen depth texture.
	CreateDepthTarget(size int) (DepthTargetID, error)

	// ReleaseDepthTarget frees a depth texture once nothing renders into it.
	ReleaseDepthTarget(id DepthTargetID)

	BeginPass(desc PassDesc)
	BindPipeline(id PipelineID)
	BindShadowUniforms(u ShadowUniforms)
	BindGeometryUniforms(u GeometryUniforms)
	BindMaterialTexture(tex scene.TextureID)
	BindShadowMap(slot int, target DepthTargetID)
	Draw(vertices, indices scene.BufferID, indexCount int)
	EndPass()

	// Present finishes the frame. Called exactly once per frame by the
	// orchestrator, even when both passes were no-ops.
	Present()
}
