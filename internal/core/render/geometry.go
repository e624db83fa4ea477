package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/scene"
)

// Skybox is an optional fixed-orientation cube map drawn after all geometry
// with a translation-stripped view, so it never parallaxes with the camera.
type Skybox struct {
	CubeMap scene.TextureID
	Cube    scene.Mesh
}

// GeometryPass forward-renders the scene from the single active camera,
// accumulating every light's contribution and sampling the shadow maps the
// shadow pass produced this frame. With no active camera the pass is a no-op
// and leaves the framebuffer untouched.
type GeometryPass struct {
	device     Device
	cache      *PipelineCache
	shader     ShaderID
	clearColor mgl32.Vec4
	skybox     *Skybox
}

func NewGeometryPass(device Device, cache *PipelineCache, shader ShaderID, clearColor mgl32.Vec4) *GeometryPass {
	return &GeometryPass{
		device:     device,
		cache:      cache,
		shader:     shader,
		clearColor: clearColor,
	}
}

// SetSkybox installs (or clears, with nil) the skybox.
func (p *GeometryPass) SetSkybox(sb *Skybox) {
	p.skybox = sb
}

// Render issues one draw per mesh instance and returns the draw count. With
// zero shadow bindings every surface renders fully lit; missing shadow maps
// are never an error here.
func (p *GeometryPass) Render(
	w *ecs.World,
	cameras *ecs.Store[scene.Camera],
	transforms *ecs.Store[scene.Transform],
	meshes *ecs.Store[scene.Mesh],
	models *ecs.Store[scene.Model],
	lights *ecs.Store[scene.Light],
	shadows []ShadowBinding,
) (int, error) {
	camEnt, cam, ok := scene.ActiveCamera(cameras)
	if !ok {
		return 0, nil
	}

	camTransform := scene.NewTransform(mgl32.Vec3{})
	if tr, ok := transforms.Get(camEnt); ok {
		camTransform = *tr
	}
	view := cam.View(&camTransform)
	proj := cam.Projection()

	lightParams := gatherLights(lights)
	lightSpace := make([]mgl32.Mat4, len(shadows))
	for i, sb := range shadows {
		lightSpace[i] = sb.LightSpace
	}

	items := collectDrawItems(w, transforms, meshes, models)
	defer releaseDrawItems(items)

	clear := p.clearColor
	p.device.BeginPass(PassDesc{Kind: PassGeometry, ClearColor: &clear, ClearDepth: true})
	for i, sb := range shadows {
		p.device.BindShadowMap(i, sb.Target)
	}

	draws := 0
	for _, item := range items {
		p.device.BindPipeline(p.cache.Lookup(PipelineState{
			Shader:       p.shader,
			Pass:         PassGeometry,
			Cull:         cullFor(item.mesh),
			DepthCompare: CompareLess,
		}))
		p.device.BindGeometryUniforms(GeometryUniforms{
			View:       view,
			Proj:       proj,
			Model:      item.world,
			Material:   item.mesh.Material,
			Lights:     lightParams,
			LightSpace: lightSpace,
		})
		if !item.mesh.Material.Texture.IsZero() {
			p.device.BindMaterialTexture(item.mesh.Material.Texture)
		}
		p.device.Draw(item.mesh.Vertices, item.mesh.Indices, item.mesh.IndexCount)
		draws++
	}

	if p.skybox != nil {
		draws += p.drawSkybox(view, proj, lightParams)
	}

	p.device.EndPass()
	return draws, nil
}

// drawSkybox draws the cube last under a depth-lessequal pipeline with the
// view translation stripped, keeping it pinned at infinity.
func (p *GeometryPass) drawSkybox(view, proj mgl32.Mat4, lightParams []LightParams) int {
	stripped := view.Mat3().Mat4()
	p.device.BindPipeline(p.cache.Lookup(PipelineState{
		Shader:       p.shader,
		Pass:         PassGeometry,
		Cull:         CullNone,
		DepthCompare: CompareLessEqual,
	}))
	p.device.BindGeometryUniforms(GeometryUniforms{
		View:     stripped,
		Proj:     proj,
		Model:    mgl32.Ident4(),
		Material: p.skybox.Cube.Material,
		Lights:   lightParams,
	})
	p.device.BindMaterialTexture(p.skybox.CubeMap)
	p.device.Draw(p.skybox.Cube.Vertices, p.skybox.Cube.Indices, p.skybox.Cube.IndexCount)
	return 1
}

// gatherLights folds intensity into color up front, one entry per light in
// store insertion order.
func gatherLights(lights *ecs.Store[scene.Light]) []LightParams {
	out := make([]LightParams, 0, lights.Count())
	for _, e := range lights.Entities() {
		l, ok := lights.Get(e)
		if !ok {
			continue
		}
		lp := LightParams{
			Kind:  l.Kind,
			Color: l.Color.Mul(l.Intensity),
		}
		switch l.Kind {
		case scene.Directional:
			lp.Direction = l.Direction
		case scene.Point:
			lp.Position = l.Position
			lp.Attenuation = mgl32.Vec3{l.Constant, l.Linear, l.Quadratic}
		}
		out = append(out, lp)
	}
	return out
}
