package ecs

import "reflect"

// World owns entity identities and the component stores attached to them.
// It is the single entry point for creating and destroying entities; systems
// receive the stores they operate on by reference, never through globals.
type World struct {
	metas   []entityMeta
	freeIDs []uint32

	storesByType map[reflect.Type]AnyStore
	stores       []AnyStore // registration order, for deterministic teardown
}

func NewWorld() *World {
	return &World{
		storesByType: make(map[reflect.Type]AnyStore, 16),
	}
}

// CreateEntity mints a new live entity with no components. It always
// succeeds. Destroyed IDs are recycled with a bumped generation.
func (w *World) CreateEntity() Entity {
	var id uint32
	if n := len(w.freeIDs); n > 0 {
		id = w.freeIDs[n-1]
		w.freeIDs = w.freeIDs[:n-1]
	} else {
		id = uint32(len(w.metas))
		w.metas = append(w.metas, entityMeta{})
	}
	meta := &w.metas[id]
	meta.version++
	meta.alive = true
	return Entity{ID: id, Version: meta.version}
}

// DestroyEntity removes every component attached to e, firing each store's
// removal hook, and retires the identity. Unknown or stale entities are a
// silent no-op. This is the only path that frees an entity's storage; hooks
// are where external resources (physics bodies, GPU handles) get released.
func (w *World) DestroyEntity(e Entity) {
	if !w.Alive(e) {
		return
	}
	for _, s := range w.stores {
		s.Remove(e)
	}
	meta := &w.metas[e.ID]
	meta.alive = false
	w.freeIDs = append(w.freeIDs, e.ID)
}

// Alive reports whether e refers to a live entity of the current generation.
func (w *World) Alive(e Entity) bool {
	if int(e.ID) >= len(w.metas) {
		return false
	}
	meta := w.metas[e.ID]
	return meta.alive && meta.version == e.Version
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	n := 0
	for _, m := range w.metas {
		if m.alive {
			n++
		}
	}
	return n
}

// GetStore returns the store for component kind T, creating and registering
// it on first use. The returned pointer stays valid for the World's lifetime,
// so systems resolve their stores once at construction.
func GetStore[T any](w *World) *Store[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := w.storesByType[t]; ok {
		return s.(*Store[T])
	}
	s := &Store[T]{
		world: w,
		index: make(map[uint32]int, 64),
	}
	w.storesByType[t] = s
	w.stores = append(w.stores, s)
	return s
}
