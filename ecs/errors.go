package ecs

import "errors"

// Entity store errors
var (
	ErrCapacityExceeded = errors.New("entity capacity exceeded")
	ErrDoubleDestroy    = errors.New("entity is not alive")
	ErrOutOfRangeEntity = errors.New("entity id out of range")
	ErrStaleEntity      = errors.New("stale entity generation")
)
