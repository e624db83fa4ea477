package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// BufferID is an opaque handle to a GPU vertex or index buffer owned by the
// resource layer outside this core.
type BufferID uuid.UUID

// TextureID is an opaque handle to a GPU texture. The zero value means no
// texture.
type TextureID uuid.UUID

func NewBufferID() BufferID {
	return BufferID(uuid.New())
}

func NewTextureID() TextureID {
	return TextureID(uuid.New())
}

func (id TextureID) IsZero() bool {
	return id == TextureID{}
}

// Material holds the Phong shading parameters bound per draw, plus an
// optional texture.
type Material struct {
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Shininess float32
	Texture   TextureID
}

// DefaultMaterial is a neutral gray with a modest highlight.
func DefaultMaterial() Material {
	return Material{
		Ambient:   mgl32.Vec3{0.2, 0.2, 0.2},
		Diffuse:   mgl32.Vec3{0.7, 0.7, 0.7},
		Specular:  mgl32.Vec3{0.3, 0.3, 0.3},
		Shininess: 32,
	}
}

// Mesh references pre-uploaded geometry buffers produced by the asset
// importer. Immutable after creation except for material swaps.
type Mesh struct {
	Vertices    BufferID
	Indices     BufferID
	IndexCount  int
	Material    Material
	DoubleSided bool
}

// Model is an immutable bundle of sub-meshes attached under one entity,
// produced once at load time from an asset record.
type Model struct {
	Meshes []Mesh
}
