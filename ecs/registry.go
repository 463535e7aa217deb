package ecs

import (
	"github.com/rotisserie/eris"
)

// Registry allocates entity IDs and tracks each live entity's signature.
// Destroyed IDs are reused most recently freed first; every reuse bumps the
// ID's generation so older Entity values stop resolving.
type Registry struct {
	capacity    int
	next        uint32
	free        []uint32
	alive       []bool
	generations []uint32
	signatures  []Signature
	live        int
}

// NewRegistry creates a registry holding at most capacity live entities
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = MaxEntities
	}
	return &Registry{
		capacity:    capacity,
		free:        make([]uint32, 0, 64),
		alive:       make([]bool, capacity),
		generations: make([]uint32, capacity),
		signatures:  make([]Signature, capacity),
	}
}

// Capacity returns the maximum number of live entities
func (r *Registry) Capacity() int {
	return r.capacity
}

// Len returns the number of live entities
func (r *Registry) Len() int {
	return r.live
}

// Create allocates an entity with an empty signature
func (r *Registry) Create() (Entity, error) {
	var id uint32
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
		if r.alive[id] {
			panic("ecs: free list holds a live entity")
		}
	} else {
		if int(r.next) >= r.capacity {
			return Entity{}, eris.Wrapf(ErrCapacityExceeded, "%d entities live", r.live)
		}
		id = r.next
		r.next++
	}

	r.alive[id] = true
	r.signatures[id] = 0
	r.live++
	return Entity{ID: id, Generation: r.generations[id]}, nil
}

// Destroy clears the entity's signature and returns its ID to the free list
func (r *Registry) Destroy(e Entity) error {
	if err := r.Check(e); err != nil {
		return err
	}
	r.signatures[e.ID] = 0
	r.alive[e.ID] = false
	r.generations[e.ID]++
	r.free = append(r.free, e.ID)
	r.live--
	return nil
}

// Check reports an error unless e is a live entity of the current generation
func (r *Registry) Check(e Entity) error {
	if int(e.ID) >= r.capacity {
		return eris.Wrapf(ErrOutOfRangeEntity, "entity %s, capacity %d", e, r.capacity)
	}
	if !r.alive[e.ID] {
		return eris.Wrapf(ErrDoubleDestroy, "entity %s", e)
	}
	if r.generations[e.ID] != e.Generation {
		return eris.Wrapf(ErrStaleEntity, "entity %s, current generation %d", e, r.generations[e.ID])
	}
	return nil
}

// Alive reports whether e refers to a live entity
func (r *Registry) Alive(e Entity) bool {
	return r.Check(e) == nil
}

// Signature returns the component signature of e
func (r *Registry) Signature(e Entity) (Signature, error) {
	if err := r.Check(e); err != nil {
		return 0, err
	}
	return r.signatures[e.ID], nil
}

// Has reports whether e is live and has component id
func (r *Registry) Has(e Entity, id ComponentID) bool {
	return r.Alive(e) && r.signatures[e.ID].Has(id)
}

// Remove clears the component bit without touching the backing array slot
func (r *Registry) Remove(e Entity, id ComponentID) error {
	if err := r.Check(e); err != nil {
		return err
	}
	r.signatures[e.ID] = r.signatures[e.ID].Without(id)
	return nil
}

func (r *Registry) set(e Entity, id ComponentID) {
	r.signatures[e.ID] = r.signatures[e.ID].With(id)
}

// Each calls fn for every live entity in ID order
func (r *Registry) Each(fn func(Entity, Signature)) {
	for id := uint32(0); id < r.next; id++ {
		if r.alive[id] {
			fn(Entity{ID: id, Generation: r.generations[id]}, r.signatures[id])
		}
	}
}

// Entities returns the live entities in ID order
func (r *Registry) Entities() []Entity {
	entities := make([]Entity, 0, r.live)
	r.Each(func(e Entity, _ Signature) {
		entities = append(entities, e)
	})
	return entities
}
