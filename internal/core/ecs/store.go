package ecs

// AnyStore is the type-erased view of a Store. It lets the World tear down
// every component of a destroyed entity uniformly, and lets queries intersect
// stores of different component kinds.
type AnyStore interface {
	// Remove detaches e's component, firing the removal hook first.
	// Returns false if e has no component of this kind.
	Remove(e Entity) bool

	// Has reports whether e currently holds a component of this kind.
	Has(e Entity) bool

	// Count returns the number of entities holding this component kind.
	Count() int

	// Entities returns the owning entities in insertion order. The slice is
	// the store's backing array; callers must not mutate it.
	Entities() []Entity
}

// Store is dense storage for one component kind keyed by entity. Components
// live in a packed slice; a sparse ID->index table gives O(1) add, remove and
// lookup. Removal swap-fills from the tail, so other entities' components are
// never moved out from under their index entries; references across structural
// mutations go through Get, never through retained pointers.
type Store[T any] struct {
	world    *World
	dense    []T
	entities []Entity // owner of each dense slot, in insertion order
	index    map[uint32]int
	onRemove func(Entity, *T)
}

var _ AnyStore = (*Store[int])(nil)

// Add attaches a component of kind T to e. Fails with ErrUnknownEntity for a
// dead or stale entity and ErrDuplicateComponent if e already has one.
func (s *Store[T]) Add(e Entity, value T) error {
	if !s.world.Alive(e) {
		return ErrUnknownEntity
	}
	if _, ok := s.index[e.ID]; ok {
		return ErrDuplicateComponent
	}
	s.index[e.ID] = len(s.dense)
	s.dense = append(s.dense, value)
	s.entities = append(s.entities, e)
	return nil
}

// Get returns a pointer to e's component, or nil and false if absent.
// Absence is a normal result; systems use it to skip entities lacking a
// capability. The pointer is valid until the next Add or Remove on this store.
func (s *Store[T]) Get(e Entity) (*T, bool) {
	i, ok := s.lookup(e)
	if !ok {
		return nil, false
	}
	return &s.dense[i], true
}

func (s *Store[T]) Has(e Entity) bool {
	_, ok := s.lookup(e)
	return ok
}

func (s *Store[T]) Remove(e Entity) bool {
	i, ok := s.lookup(e)
	if !ok {
		return false
	}
	if s.onRemove != nil {
		s.onRemove(e, &s.dense[i])
	}
	last := len(s.dense) - 1
	if i < last {
		s.dense[i] = s.dense[last]
		s.entities[i] = s.entities[last]
		s.index[s.entities[i].ID] = i
	}
	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	delete(s.index, e.ID)
	return true
}

func (s *Store[T]) Count() int {
	return len(s.dense)
}

func (s *Store[T]) Entities() []Entity {
	return s.entities
}

// OnRemove installs a hook invoked with the component value just before it is
// detached, both for direct Remove calls and for entity destruction. Used to
// release resources the component references outside the ECS, such as physics
// bodies.
func (s *Store[T]) OnRemove(fn func(Entity, *T)) {
	s.onRemove = fn
}

func (s *Store[T]) lookup(e Entity) (int, bool) {
	i, ok := s.index[e.ID]
	if !ok || s.entities[i].Version != e.Version {
		return 0, false
	}
	return i, true
}
