package ecs

// Query iterates the entities that hold every one of a set of component
// kinds. It drives off the most selective (smallest) store and filters the
// rest, so cost is proportional to the rarest component. The driving store's
// entity list is snapshotted at creation: structural mutations made while a
// traversal is in flight are not observed by that traversal, and entities
// that lose a required component mid-iteration are skipped.
type Query struct {
	snapshot []Entity
	stores   []AnyStore
	world    *World
	pos      int
	current  Entity
}

// NewQuery builds a restartable query over the given stores. Two successive
// queries with no mutation in between yield identical sequences, in the
// insertion order of the most selective store.
func NewQuery(w *World, stores ...AnyStore) *Query {
	q := &Query{world: w, stores: stores, pos: -1}
	if len(stores) == 0 {
		return q
	}
	driver := stores[0]
	for _, s := range stores[1:] {
		if s.Count() < driver.Count() {
			driver = s
		}
	}
	q.snapshot = append(q.snapshot, driver.Entities()...)
	return q
}

// Next advances to the next matching entity. Returns false when exhausted.
func (q *Query) Next() bool {
	for {
		q.pos++
		if q.pos >= len(q.snapshot) {
			return false
		}
		e := q.snapshot[q.pos]
		if !q.world.Alive(e) {
			continue
		}
		if q.matches(e) {
			q.current = e
			return true
		}
	}
}

// Entity returns the entity at the current position.
func (q *Query) Entity() Entity {
	return q.current
}

func (q *Query) matches(e Entity) bool {
	for _, s := range q.stores {
		if !s.Has(e) {
			return false
		}
	}
	return true
}
