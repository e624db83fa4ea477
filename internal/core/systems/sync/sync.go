// Package sync reconciles physics poses with entity transforms once per
// frame. It is the only code path allowed to write a physics-backed
// Transform, and runs strictly after the physics step and before any render
// pass.
package sync

import (
	"fmt"

	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/physics"
	"github.com/lumen3d/lumen/internal/core/scene"
)

// System copies authoritative transform state between the physics world and
// entity transforms, in a fixed direction per body kind.
type System struct {
	world      *ecs.World
	physics    *physics.World
	bodies     *ecs.Store[scene.Rigidbody]
	transforms *ecs.Store[scene.Transform]
}

func New(w *ecs.World, pw *physics.World) *System {
	return &System{
		world:      w,
		physics:    pw,
		bodies:     ecs.GetStore[scene.Rigidbody](w),
		transforms: ecs.GetStore[scene.Transform](w),
	}
}

// Apply reconciles every entity holding both a Rigidbody and a Transform.
// Static and dynamic bodies copy the simulated pose into the Transform, bit
// for bit. Kinematic bodies push the Transform into the simulation instead,
// where it takes effect on the next step; the resulting one-frame latency is
// part of the collision-timing contract, not a defect.
func (s *System) Apply() error {
	q := ecs.NewQuery(s.world, s.bodies, s.transforms)
	for q.Next() {
		e := q.Entity()
		rb, _ := s.bodies.Get(e)
		tr, _ := s.transforms.Get(e)

		switch rb.Kind {
		case physics.Static, physics.Dynamic:
			pose, err := s.physics.GetPose(rb.Handle)
			if err != nil {
				return fmt.Errorf("sync entity %d: %w", e.ID, err)
			}
			tr.Pos = pose.Pos
			tr.Rot = pose.Rot
		case physics.Kinematic:
			pose := physics.Pose{Pos: tr.Pos, Rot: tr.Rot}
			if err := s.physics.SetPose(rb.Handle, pose); err != nil {
				return fmt.Errorf("sync entity %d: %w", e.ID, err)
			}
		}
	}
	return nil
}
