package resource

import (
	"github.com/cespare/xxhash/v2"
	"github.com/rotisserie/eris"
)

type nameEntry[T any] struct {
	name   string
	handle Handle[T]
}

// NameRegistry maps resource names to handles. Names are bucketed by their
// xxhash digest; colliding names share a bucket and are told apart by value.
type NameRegistry[T any] struct {
	buckets map[uint64][]nameEntry[T]
	count   int
}

// NewNameRegistry creates an empty registry
func NewNameRegistry[T any]() *NameRegistry[T] {
	return &NameRegistry[T]{
		buckets: make(map[uint64][]nameEntry[T]),
	}
}

// Register binds name to h. A name can be bound to only one handle at a time.
func (r *NameRegistry[T]) Register(name string, h Handle[T]) error {
	key := xxhash.Sum64String(name)
	for _, e := range r.buckets[key] {
		if e.name == name {
			return eris.Wrapf(ErrDuplicateName, "register %q", name)
		}
	}
	r.buckets[key] = append(r.buckets[key], nameEntry[T]{name: name, handle: h})
	r.count++
	return nil
}

// Lookup returns the handle bound to name
func (r *NameRegistry[T]) Lookup(name string) (Handle[T], error) {
	for _, e := range r.buckets[xxhash.Sum64String(name)] {
		if e.name == name {
			return e.handle, nil
		}
	}
	return Handle[T]{}, eris.Wrapf(ErrUnknownName, "lookup %q", name)
}

// Forget removes name from the registry. It reports whether the name was bound.
func (r *NameRegistry[T]) Forget(name string) bool {
	key := xxhash.Sum64String(name)
	bucket := r.buckets[key]
	for i, e := range bucket {
		if e.name != name {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(r.buckets, key)
		} else {
			r.buckets[key] = bucket
		}
		r.count--
		return true
	}
	return false
}

// Len returns the number of bound names
func (r *NameRegistry[T]) Len() int {
	return r.count
}

// Clear forgets every name
func (r *NameRegistry[T]) Clear() {
	clear(r.buckets)
	r.count = 0
}
