// Package generic holds small typed utilities shared across the engine.
package generic

import "sync"

// Pool is a typed wrapper around sync.Pool. The engine uses it to recycle
// per-frame scratch slices such as draw lists.
type Pool[T any] struct {
	pool sync.Pool
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}
