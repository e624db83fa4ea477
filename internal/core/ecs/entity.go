// Package ecs implements the entity manager and per-kind component stores.
// Entities are opaque generation-checked identities; all data lives in stores.
package ecs

// Entity is a unique identity in a World. It combines a recyclable 32-bit ID
// with a generation counter so that stale references to a destroyed entity
// are rejected everywhere instead of aliasing the ID's next owner.
type Entity struct {
	ID      uint32
	Version uint32
}

// entityMeta tracks the liveness and current generation of one entity ID slot.
type entityMeta struct {
	version uint32
	alive   bool
}
