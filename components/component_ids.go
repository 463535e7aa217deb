package components

import (
	"ebiten-forge/ecs"
)

// Component IDs. Each one is a bit in ecs.Signature.
const (
	Transform ecs.ComponentID = iota
	Model
	Text
	Sprite
	Collider
	RigidBody
	Parent
	Metadata

	componentCount
)
