// Package resource provides generational handles over pooled engine resources.
package resource

import "fmt"

// Handle identifies a slot in a Pool[T]. A handle is only valid while the
// slot's generation matches the one it was issued with.
type Handle[T any] struct {
	Index      uint32
	Generation uint32
}

// String formats the handle as index/generation
func (h Handle[T]) String() string {
	return fmt.Sprintf("%d/%d", h.Index, h.Generation)
}
