package ecs

import (
	"math/bits"
	"strings"
)

// ComponentID is a unique identifier for component types
type ComponentID uint8

// MaxComponentTypes is the number of bits in a Signature
const MaxComponentTypes = 32

// Signature records which component arrays hold data for an entity.
type Signature uint32

// SignatureOf builds a signature with the given component bits set
func SignatureOf(ids ...ComponentID) Signature {
	var s Signature
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

// With returns s with id set
func (s Signature) With(id ComponentID) Signature {
	if id >= MaxComponentTypes {
		panic("ecs: component id exceeds signature width")
	}
	return s | 1<<id
}

// Without returns s with id cleared
func (s Signature) Without(id ComponentID) Signature {
	return s &^ (1 << id)
}

// Has reports whether id is set
func (s Signature) Has(id ComponentID) bool {
	return id < MaxComponentTypes && s&(1<<id) != 0
}

// Contains reports whether every bit of sub is set in s
func (s Signature) Contains(sub Signature) bool {
	return s&sub == sub
}

// Empty reports whether no bits are set
func (s Signature) Empty() bool {
	return s == 0
}

// Count returns the number of set bits
func (s Signature) Count() int {
	return bits.OnesCount32(uint32(s))
}

// Format renders the set bits using names, one per component ID
func (s Signature) Format(names func(ComponentID) string) string {
	var parts []string
	for id := ComponentID(0); id < MaxComponentTypes; id++ {
		if s.Has(id) {
			parts = append(parts, names(id))
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}
