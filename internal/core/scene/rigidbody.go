package scene

import (
	"github.com/lumen3d/lumen/internal/core/physics"
)

// Rigidbody pairs an entity 1:1 with a simulated body. The physics world owns
// the authoritative pose; the entity's Transform is its rendering-facing
// mirror, reconciled once per frame by the sync system. Kind decides the flow
// direction: static and dynamic bodies push physics state into the Transform,
// kinematic bodies push the Transform into physics.
type Rigidbody struct {
	Mass   float32
	Shape  physics.Shape
	Kind   physics.BodyKind
	Handle physics.BodyHandle
}
