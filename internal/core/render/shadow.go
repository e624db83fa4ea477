package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/scene"
)

// ShadowBinding is the output of the shadow pass for one casting light: the
// depth texture and the matrix that projected into it, consumed by the
// geometry pass in the same slot order.
type ShadowBinding struct {
	Light      ecs.Entity
	LightSpace mgl32.Mat4
	Target     DepthTargetID
}

// ShadowPass renders scene depth from each shadow-casting light's point of
// view into a per-light offscreen depth target. With zero casters the pass
// issues no device commands at all.
type ShadowPass struct {
	device  Device
	cache   *PipelineCache
	shader  ShaderID
	mapSize int

	// targets caches one depth texture per casting light entity, allocated
	// lazily and reused across frames.
	targets map[ecs.Entity]DepthTargetID
}

func NewShadowPass(device Device, cache *PipelineCache, shader ShaderID, mapSize int) *ShadowPass {
	return &ShadowPass{
		device:  device,
		cache:   cache,
		shader:  shader,
		mapSize: mapSize,
		targets: make(map[ecs.Entity]DepthTargetID, 4),
	}
}

// Render draws depth-only geometry for every entity with a Mesh or Model into
// each casting light's target, clearing it first. No color output, no
// blending; front faces only unless the mesh is double-sided. A failed depth
// target allocation is fatal and reported as ErrShadowTarget.
func (p *ShadowPass) Render(
	w *ecs.World,
	lights *ecs.Store[scene.Light],
	transforms *ecs.Store[scene.Transform],
	meshes *ecs.Store[scene.Mesh],
	models *ecs.Store[scene.Model],
) ([]ShadowBinding, error) {
	var casters []ecs.Entity
	for _, e := range lights.Entities() {
		if l, ok := lights.Get(e); ok && l.CastsShadow {
			casters = append(casters, e)
		}
	}
	if len(casters) == 0 {
		return nil, nil
	}

	items := collectDrawItems(w, transforms, meshes, models)
	defer releaseDrawItems(items)

	bindings := make([]ShadowBinding, 0, len(casters))
	for _, e := range casters {
		light, _ := lights.Get(e)

		target, ok := p.targets[e]
		if !ok {
			var err error
			target, err = p.device.CreateDepthTarget(p.mapSize)
			if err != nil {
				return nil, fmt.Errorf("%w: light %d: %v", ErrShadowTarget, e.ID, err)
			}
			p.targets[e] = target
		}

		lightSpace := light.LightSpace()
		p.device.BeginPass(PassDesc{Kind: PassShadow, Target: target, ClearDepth: true})
		for _, item := range items {
			p.device.BindPipeline(p.cache.Lookup(PipelineState{
				Shader:       p.shader,
				Pass:         PassShadow,
				Cull:         cullFor(item.mesh),
				DepthCompare: CompareLess,
			}))
			p.device.BindShadowUniforms(ShadowUniforms{
				LightSpace: lightSpace,
				Model:      item.world,
			})
			p.device.Draw(item.mesh.Vertices, item.mesh.Indices, item.mesh.IndexCount)
		}
		p.device.EndPass()

		bindings = append(bindings, ShadowBinding{Light: e, LightSpace: lightSpace, Target: target})
	}
	return bindings, nil
}

// ReleaseLight frees the depth target of a removed light, on the device and
// in the cache.
func (p *ShadowPass) ReleaseLight(e ecs.Entity) {
	target, ok := p.targets[e]
	if !ok {
		return
	}
	p.device.ReleaseDepthTarget(target)
	delete(p.targets, e)
}

func cullFor(mesh scene.Mesh) CullMode {
	if mesh.DoubleSided {
		return CullNone
	}
	return CullBack
}
