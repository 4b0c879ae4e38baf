package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID keys a world's component storages. Ids are process-wide, so one
// kind means the same storage in every world.
type ComponentID uint32

var lastComponentID atomic.Uint32

// ComponentKind ties a Go type to a storage id. The zero value has no storage
// and every ecs call rejects it with ErrInvalidComponentKind.
type ComponentKind[T any] struct {
	id ComponentID
}

// NewComponentKind allocates a fresh id. Two kinds of the same T are distinct
// storages; tests use that to get isolated kinds.
func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(lastComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID { return k.id }

func (k ComponentKind[T]) Valid() bool { return k.id != 0 }

// ComponentHandle is what packages export for their components, e.g.
// TransformComponent here or navigation.WalkerComponent.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] { return h.kind }
