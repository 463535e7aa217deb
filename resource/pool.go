package resource

import (
	"github.com/rotisserie/eris"
)

// Loader decodes a resource of type T from one or more source paths.
type Loader[T any] func(paths []string) (T, error)

// Option configures a Pool
type Option[T any] func(*Pool[T])

// WithLoader sets the loader used by Pool.Load
func WithLoader[T any](loader Loader[T]) Option[T] {
	return func(p *Pool[T]) {
		p.loader = loader
	}
}

// WithRelease sets a hook that receives every value leaving the pool through
// Remove or ClearAll. GPU-backed kinds use it to hand memory back to the
// graphics context.
func WithRelease[T any](release func(T)) Option[T] {
	return func(p *Pool[T]) {
		p.release = release
	}
}

// Pool is a generational slot map. It exclusively owns its values; callers
// hold plain Handle[T] values which are checked against the slot generation
// on every access. A Pool is not safe for concurrent use.
type Pool[T any] struct {
	resources   []T
	generations []uint32
	occupied    []bool
	slotNames   []string
	freeList    []uint32

	names   *NameRegistry[T]
	loader  Loader[T]
	release func(T)
	live    int
}

// NewPool creates an empty pool
func NewPool[T any](opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{
		names: NewNameRegistry[T](),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add stores value and returns its handle. Freed slots are reused most
// recently freed first. If name is non-empty it is registered for GetHandle.
func (p *Pool[T]) Add(value T, name string) (Handle[T], error) {
	if name != "" {
		if _, err := p.names.Lookup(name); err == nil {
			return Handle[T]{}, eris.Wrapf(ErrDuplicateName, "add %q", name)
		}
	}

	var index uint32
	if n := len(p.freeList); n > 0 {
		index = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		if p.occupied[index] {
			panic("resource: free list holds an occupied slot")
		}
		p.resources[index] = value
	} else {
		index = uint32(len(p.resources))
		p.resources = append(p.resources, value)
		p.generations = append(p.generations, 0)
		p.occupied = append(p.occupied, false)
		p.slotNames = append(p.slotNames, "")
	}
	p.occupied[index] = true
	p.live++

	h := Handle[T]{Index: index, Generation: p.generations[index]}
	if name != "" {
		// Lookup above guarantees the name is free
		_ = p.names.Register(name, h)
		p.slotNames[index] = name
	}
	return h, nil
}

// Load decodes a value with the pool's loader and adds it under name.
func (p *Pool[T]) Load(paths []string, name string) (Handle[T], error) {
	if p.loader == nil {
		return Handle[T]{}, eris.Wrapf(ErrNoLoader, "load %q", name)
	}
	value, err := p.loader(paths)
	if err != nil {
		return Handle[T]{}, eris.Wrapf(err, "load %q from %v", name, paths)
	}
	return p.Add(value, name)
}

// check reports an error unless h refers to a live slot of this generation
func (p *Pool[T]) check(h Handle[T]) error {
	if int(h.Index) >= len(p.resources) {
		return eris.Wrapf(ErrStaleHandle, "handle %s was never issued", h)
	}
	if !p.occupied[h.Index] || p.generations[h.Index] != h.Generation {
		return eris.Wrapf(ErrStaleHandle, "handle %s, slot generation %d", h, p.generations[h.Index])
	}
	return nil
}

// Valid reports whether h refers to a live value
func (p *Pool[T]) Valid(h Handle[T]) bool {
	return p.check(h) == nil
}

// Get returns a pointer to the value behind h. The pointer is only valid
// until the next Add.
func (p *Pool[T]) Get(h Handle[T]) (*T, error) {
	if err := p.check(h); err != nil {
		return nil, err
	}
	return &p.resources[h.Index], nil
}

// Remove frees the slot behind h, invalidating every copy of the handle.
// The value is passed to the release hook, if any.
func (p *Pool[T]) Remove(h Handle[T]) error {
	if err := p.check(h); err != nil {
		return err
	}
	p.free(h.Index)
	return nil
}

func (p *Pool[T]) free(index uint32) {
	value := p.resources[index]
	var zero T
	p.resources[index] = zero
	p.occupied[index] = false
	// Wraps on overflow
	p.generations[index]++
	if name := p.slotNames[index]; name != "" {
		p.names.Forget(name)
		p.slotNames[index] = ""
	}
	p.freeList = append(p.freeList, index)
	p.live--

	if p.release != nil {
		p.release(value)
	}
}

// GetHandle returns the handle registered under name
func (p *Pool[T]) GetHandle(name string) (Handle[T], error) {
	return p.names.Lookup(name)
}

// GetByName resolves name and returns the value behind it
func (p *Pool[T]) GetByName(name string) (*T, error) {
	h, err := p.names.Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Get(h)
}

// Each calls fn for every live value in index order
func (p *Pool[T]) Each(fn func(Handle[T], *T)) {
	for i := range p.resources {
		if !p.occupied[i] {
			continue
		}
		fn(Handle[T]{Index: uint32(i), Generation: p.generations[i]}, &p.resources[i])
	}
}

// Len returns the number of live values
func (p *Pool[T]) Len() int {
	return p.live
}

// ClearAll releases every live slot. Generations keep counting, so handles
// issued before the clear stay stale after the slots are reused.
func (p *Pool[T]) ClearAll() {
	for i := range p.resources {
		if p.occupied[i] {
			p.free(uint32(i))
		}
	}
	p.names.Clear()
}
