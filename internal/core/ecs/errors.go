package ecs

import "errors"

var (
	// ErrDuplicateComponent is returned when adding a component of a kind the
	// entity already has. One instance per kind per entity.
	ErrDuplicateComponent = errors.New("ecs: duplicate component")

	// ErrUnknownEntity is returned when adding a component to a destroyed or
	// never-created entity. This is a logic bug in calling code.
	ErrUnknownEntity = errors.New("ecs: unknown entity")
)
