package ecs

// Array is a fixed-capacity component array indexed directly by entity ID.
// The owning registry's signature bit gates every read, so a slot whose bit
// is cleared may still hold old data that nothing can reach.
type Array[T any] struct {
	id       ComponentID
	registry *Registry
	data     []T
}

// NewArray creates an array sized to the registry's capacity
func NewArray[T any](registry *Registry, id ComponentID) *Array[T] {
	return &Array[T]{
		id:       id,
		registry: registry,
		data:     make([]T, registry.Capacity()),
	}
}

// ID returns the component ID this array stores
func (a *Array[T]) ID() ComponentID {
	return a.id
}

// Set writes value for e and sets its signature bit. Setting an existing
// component replaces it.
func (a *Array[T]) Set(e Entity, value T) error {
	if err := a.registry.Check(e); err != nil {
		return err
	}
	a.data[e.ID] = value
	a.registry.set(e, a.id)
	return nil
}

// Get returns the component for e if its signature bit is set
func (a *Array[T]) Get(e Entity) (*T, bool) {
	if !a.registry.Has(e, a.id) {
		return nil, false
	}
	return &a.data[e.ID], true
}

// Remove clears e's signature bit
func (a *Array[T]) Remove(e Entity) error {
	return a.registry.Remove(e, a.id)
}
