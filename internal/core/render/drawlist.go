package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/scene"
	"github.com/lumen3d/lumen/pkg/generic"
)

// drawItem is one mesh instance ready to be drawn: its resolved world matrix
// plus the mesh record.
type drawItem struct {
	world mgl32.Mat4
	mesh  scene.Mesh
}

var drawListPool = generic.NewPool(func() []drawItem {
	return make([]drawItem, 0, 64)
})

// collectDrawItems gathers every entity with a Transform and a Mesh or Model
// into a flat draw list. Model bundles expand to one item per sub-mesh, all
// under the owning entity's world matrix. The returned slice comes from a
// pool; hand it back with releaseDrawItems when the pass is done.
func collectDrawItems(
	w *ecs.World,
	transforms *ecs.Store[scene.Transform],
	meshes *ecs.Store[scene.Mesh],
	models *ecs.Store[scene.Model],
) []drawItem {
	items := drawListPool.Get()

	mq := ecs.NewQuery(w, meshes, transforms)
	for mq.Next() {
		mesh, _ := meshes.Get(mq.Entity())
		tr, _ := transforms.Get(mq.Entity())
		items = append(items, drawItem{world: tr.Matrix(), mesh: *mesh})
	}

	dq := ecs.NewQuery(w, models, transforms)
	for dq.Next() {
		model, _ := models.Get(dq.Entity())
		tr, _ := transforms.Get(dq.Entity())
		world := tr.Matrix()
		for _, mesh := range model.Meshes {
			items = append(items, drawItem{world: world, mesh: mesh})
		}
	}
	return items
}

func releaseDrawItems(items []drawItem) {
	drawListPool.Put(items[:0])
}
