package render

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/scene"
)

type renderFixture struct {
	world      *ecs.World
	device     *RecordingDevice
	cache      *PipelineCache
	shadow     *ShadowPass
	geometry   *GeometryPass
	transforms *ecs.Store[scene.Transform]
	meshes     *ecs.Store[scene.Mesh]
	models     *ecs.Store[scene.Model]
	cameras    *ecs.Store[scene.Camera]
	lights     *ecs.Store[scene.Light]
}

func newRenderFixture(t *testing.T) *renderFixture {
	t.Helper()
	w := ecs.NewWorld()
	device := NewRecordingDevice()
	cache := NewPipelineCache()
	return &renderFixture{
		world:      w,
		device:     device,
		cache:      cache,
		shadow:     NewShadowPass(device, cache, NewShaderID(), 1024),
		geometry:   NewGeometryPass(device, cache, NewShaderID(), mgl32.Vec4{0.1, 0.1, 0.1, 1}),
		transforms: ecs.GetStore[scene.Transform](w),
		meshes:     ecs.GetStore[scene.Mesh](w),
		models:     ecs.GetStore[scene.Model](w),
		cameras:    ecs.GetStore[scene.Camera](w),
		lights:     ecs.GetStore[scene.Light](w),
	}
}

func (f *renderFixture) addMesh(t *testing.T, pos mgl32.Vec3, doubleSided bool) ecs.Entity {
	t.Helper()
	e := f.world.CreateEntity()
	require.NoError(t, f.transforms.Add(e, scene.NewTransform(pos)))
	mesh := scene.Mesh{
		Vertices:    scene.NewBufferID(),
		Indices:     scene.NewBufferID(),
		IndexCount:  36,
		Material:    scene.DefaultMaterial(),
		DoubleSided: doubleSided,
	}
	require.NoError(t, f.meshes.Add(e, mesh))
	return e
}

func (f *renderFixture) addActiveCamera(t *testing.T) ecs.Entity {
	t.Helper()
	e := f.world.CreateEntity()
	require.NoError(t, f.transforms.Add(e, scene.NewTransform(mgl32.Vec3{0, 2, 10})))
	require.NoError(t, f.cameras.Add(e, scene.NewCamera(16.0/9)))
	require.NoError(t, scene.ActivateCamera(f.cameras, e))
	return e
}

func (f *renderFixture) addCaster(t *testing.T) ecs.Entity {
	t.Helper()
	e := f.world.CreateEntity()
	l := scene.NewDirectionalLight(mgl32.Vec3{0.3, -1, 0.2}, mgl32.Vec3{1, 1, 1}, 1)
	l.CastsShadow = true
	require.NoError(t, f.lights.Add(e, l))
	return e
}

func (f *renderFixture) renderShadows(t *testing.T) []ShadowBinding {
	t.Helper()
	bindings, err := f.shadow.Render(f.world, f.lights, f.transforms, f.meshes, f.models)
	require.NoError(t, err)
	return bindings
}

func TestShadowPass_NoCastersIsNoOp(t *testing.T) {
	f := newRenderFixture(t)
	f.addMesh(t, mgl32.Vec3{}, false)

	// A light that does not cast still means zero shadow work.
	e := f.world.CreateEntity()
	require.NoError(t, f.lights.Add(e, scene.NewPointLight(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 1}, 1)))

	bindings := f.renderShadows(t)
	assert.Nil(t, bindings)
	assert.Empty(t, f.device.Commands(), "zero casters must issue zero device commands")
	assert.Zero(t, f.device.DepthTargetCount())
}

func TestShadowPass_DepthOnlyPerCaster(t *testing.T) {
	f := newRenderFixture(t)
	f.addMesh(t, mgl32.Vec3{}, false)
	f.addMesh(t, mgl32.Vec3{3, 0, 0}, false)
	f.addCaster(t)
	f.addCaster(t)

	bindings := f.renderShadows(t)
	require.Len(t, bindings, 2)
	assert.NotEqual(t, bindings[0].Target, bindings[1].Target, "each caster owns a private depth target")

	assert.Equal(t, 2, f.device.CountKind(CmdBeginPass))
	assert.Equal(t, 4, f.device.CountKind(CmdDraw), "two meshes into each of two targets")
	assert.Equal(t, 0, f.device.CountKind(CmdBindGeometryUniforms), "depth-only: no color or lighting state")

	for _, c := range f.device.Commands() {
		if c.Kind == CmdBeginPass {
			assert.Equal(t, PassShadow, c.Pass.Kind)
			assert.True(t, c.Pass.ClearDepth, "each target is cleared first")
			assert.Nil(t, c.Pass.ClearColor)
		}
	}

	t.Run("targets are cached across frames", func(t *testing.T) {
		allocated := f.device.DepthTargetCount()
		f.device.Reset()
		f.renderShadows(t)
		assert.Equal(t, allocated, f.device.DepthTargetCount())
	})
}

func TestShadowPass_ReleaseLightFreesDepthTarget(t *testing.T) {
	f := newRenderFixture(t)
	f.addMesh(t, mgl32.Vec3{}, false)
	caster := f.addCaster(t)

	bindings := f.renderShadows(t)
	require.Len(t, bindings, 1)
	require.Equal(t, 1, f.device.DepthTargetCount())

	f.shadow.ReleaseLight(caster)
	assert.Zero(t, f.device.DepthTargetCount(), "the device texture must be freed, not just forgotten")
	assert.Equal(t, 1, f.device.CountKind(CmdReleaseDepthTarget))

	// Releasing an unknown light touches nothing.
	f.shadow.ReleaseLight(f.world.CreateEntity())
	assert.Equal(t, 1, f.device.CountKind(CmdReleaseDepthTarget))

	// The next frame allocates a fresh target.
	f.device.Reset()
	f.renderShadows(t)
	assert.Equal(t, 1, f.device.DepthTargetCount())
}

func TestShadowPass_TargetAllocationFailureIsFatal(t *testing.T) {
	f := newRenderFixture(t)
	f.addMesh(t, mgl32.Vec3{}, false)
	f.addCaster(t)
	f.device.DepthTargetErr = errors.New("out of memory")

	_, err := f.shadow.Render(f.world, f.lights, f.transforms, f.meshes, f.models)
	assert.ErrorIs(t, err, ErrShadowTarget)
}

func TestGeometryPass_NoActiveCameraIsNoOp(t *testing.T) {
	f := newRenderFixture(t)
	f.addMesh(t, mgl32.Vec3{}, false)

	// Camera present but inactive.
	e := f.world.CreateEntity()
	require.NoError(t, f.cameras.Add(e, scene.NewCamera(1)))

	draws, err := f.geometry.Render(f.world, f.cameras, f.transforms, f.meshes, f.models, f.lights, nil)
	require.NoError(t, err)
	assert.Zero(t, draws)
	assert.Empty(t, f.device.Commands(), "the framebuffer must stay unmodified")
}

func TestGeometryPass_DrawsMeshesAndModels(t *testing.T) {
	f := newRenderFixture(t)
	f.addActiveCamera(t)
	f.addMesh(t, mgl32.Vec3{}, false)

	// A model bundle contributes one draw per sub-mesh.
	sub := scene.Mesh{Vertices: scene.NewBufferID(), Indices: scene.NewBufferID(), IndexCount: 12, Material: scene.DefaultMaterial()}
	modelEnt := f.world.CreateEntity()
	require.NoError(t, f.transforms.Add(modelEnt, scene.NewTransform(mgl32.Vec3{5, 0, 0})))
	require.NoError(t, f.models.Add(modelEnt, scene.Model{Meshes: []scene.Mesh{sub, sub, sub}}))

	draws, err := f.geometry.Render(f.world, f.cameras, f.transforms, f.meshes, f.models, f.lights, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, draws)
	assert.Equal(t, 4, f.device.CountKind(CmdDraw))

	begin := f.device.Commands()[0]
	require.Equal(t, CmdBeginPass, begin.Kind)
	assert.Equal(t, PassGeometry, begin.Pass.Kind)
	require.NotNil(t, begin.Pass.ClearColor)
	assert.True(t, begin.Pass.ClearDepth)
}

func TestGeometryPass_UnshadowedWithoutCasters(t *testing.T) {
	f := newRenderFixture(t)
	f.addActiveCamera(t)
	f.addMesh(t, mgl32.Vec3{}, false)

	lightEnt := f.world.CreateEntity()
	require.NoError(t, f.lights.Add(lightEnt, scene.NewDirectionalLight(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1}, 0.8)))

	draws, err := f.geometry.Render(f.world, f.cameras, f.transforms, f.meshes, f.models, f.lights, nil)
	require.NoError(t, err)
	require.Equal(t, 1, draws)
	assert.Zero(t, f.device.CountKind(CmdBindShadowMap))

	for _, c := range f.device.Commands() {
		if c.Kind == CmdBindGeometryUniforms {
			assert.Empty(t, c.Geometry.LightSpace, "all surfaces fully lit, no shadow attenuation")
			require.Len(t, c.Geometry.Lights, 1)
			assert.Equal(t, mgl32.Vec3{0.8, 0.8, 0.8}, c.Geometry.Lights[0].Color, "intensity folded into color")
		}
	}
}

func TestGeometryPass_BindsShadowOutputs(t *testing.T) {
	f := newRenderFixture(t)
	f.addActiveCamera(t)
	f.addMesh(t, mgl32.Vec3{}, false)
	f.addCaster(t)

	bindings := f.renderShadows(t)
	require.Len(t, bindings, 1)
	f.device.Reset()

	draws, err := f.geometry.Render(f.world, f.cameras, f.transforms, f.meshes, f.models, f.lights, bindings)
	require.NoError(t, err)
	require.Equal(t, 1, draws)

	assert.Equal(t, 1, f.device.CountKind(CmdBindShadowMap))
	for _, c := range f.device.Commands() {
		switch c.Kind {
		case CmdBindShadowMap:
			assert.Equal(t, bindings[0].Target, c.Target)
			assert.Equal(t, 0, c.Slot)
		case CmdBindGeometryUniforms:
			require.Len(t, c.Geometry.LightSpace, 1)
			assert.Equal(t, bindings[0].LightSpace, c.Geometry.LightSpace[0])
		}
	}
}

func TestGeometryPass_PointLightAttenuationBound(t *testing.T) {
	f := newRenderFixture(t)
	f.addActiveCamera(t)
	f.addMesh(t, mgl32.Vec3{}, false)

	lightEnt := f.world.CreateEntity()
	pl := scene.NewPointLight(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 0.5, 0.25}, 2)
	require.NoError(t, f.lights.Add(lightEnt, pl))

	_, err := f.geometry.Render(f.world, f.cameras, f.transforms, f.meshes, f.models, f.lights, nil)
	require.NoError(t, err)

	found := false
	for _, c := range f.device.Commands() {
		if c.Kind == CmdBindGeometryUniforms {
			found = true
			require.Len(t, c.Geometry.Lights, 1)
			lp := c.Geometry.Lights[0]
			assert.Equal(t, scene.Point, lp.Kind)
			assert.Equal(t, mgl32.Vec3{0, 5, 0}, lp.Position)
			assert.Equal(t, mgl32.Vec3{1, 0.09, 0.032}, lp.Attenuation)
			assert.Equal(t, mgl32.Vec3{2, 1, 0.5}, lp.Color)
		}
	}
	assert.True(t, found)
}

func TestGeometryPass_SkyboxDrawnLast(t *testing.T) {
	f := newRenderFixture(t)
	f.addActiveCamera(t)
	f.addMesh(t, mgl32.Vec3{}, false)

	cube := scene.Mesh{Vertices: scene.NewBufferID(), Indices: scene.NewBufferID(), IndexCount: 36}
	f.geometry.SetSkybox(&Skybox{CubeMap: scene.NewTextureID(), Cube: cube})

	draws, err := f.geometry.Render(f.world, f.cameras, f.transforms, f.meshes, f.models, f.lights, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, draws)

	cmds := f.device.Commands()
	var drawIdx []int
	for i, c := range cmds {
		if c.Kind == CmdDraw {
			drawIdx = append(drawIdx, i)
		}
	}
	require.Len(t, drawIdx, 2)
	last := cmds[drawIdx[1]]
	assert.Equal(t, cube.Vertices, last.Vertices, "skybox cube is the final draw")

	// The skybox pipeline must use the depth-equal trick.
	var lastPipeline PipelineID
	for _, c := range cmds[:drawIdx[1]] {
		if c.Kind == CmdBindPipeline {
			lastPipeline = c.Pipeline
		}
	}
	st, ok := f.cache.State(lastPipeline)
	require.True(t, ok)
	assert.Equal(t, CompareLessEqual, st.DepthCompare)

	// And its view matrix must carry no translation.
	var lastUniforms GeometryUniforms
	for _, c := range cmds[:drawIdx[1]+1] {
		if c.Kind == CmdBindGeometryUniforms {
			lastUniforms = c.Geometry
		}
	}
	assert.Equal(t, float32(0), lastUniforms.View.At(0, 3))
	assert.Equal(t, float32(0), lastUniforms.View.At(1, 3))
	assert.Equal(t, float32(0), lastUniforms.View.At(2, 3))
}

func TestPipelineCache_DeduplicatesStates(t *testing.T) {
	c := NewPipelineCache()
	shader := NewShaderID()

	st := PipelineState{Shader: shader, Pass: PassGeometry, Cull: CullBack, DepthCompare: CompareLess}
	id1 := c.Lookup(st)
	id2 := c.Lookup(st)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, c.Size())

	st.Cull = CullNone
	id3 := c.Lookup(st)
	assert.NotEqual(t, id1, id3)
	assert.Equal(t, 2, c.Size())
}

func TestShadowPass_DoubleSidedMeshDisablesCulling(t *testing.T) {
	f := newRenderFixture(t)
	f.addMesh(t, mgl32.Vec3{}, true)
	f.addCaster(t)

	f.renderShadows(t)

	var pipelines []PipelineID
	for _, c := range f.device.Commands() {
		if c.Kind == CmdBindPipeline {
			pipelines = append(pipelines, c.Pipeline)
		}
	}
	require.NotEmpty(t, pipelines)
	st, ok := f.cache.State(pipelines[0])
	require.True(t, ok)
	assert.Equal(t, CullNone, st.Cull)
}
