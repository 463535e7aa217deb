package components

import (
	"strings"

	"ebiten-forge/ecs"
)

// componentNames maps component IDs to their display names
var componentNames = [componentCount]string{
	Transform: "Transform",
	Model:     "Model",
	Text:      "Text",
	Sprite:    "Sprite",
	Collider:  "Collider",
	RigidBody: "RigidBody",
	Parent:    "Parent",
	Metadata:  "Metadata",
}

// Name returns the display name of a component ID
func Name(id ecs.ComponentID) string {
	if int(id) < len(componentNames) {
		return componentNames[id]
	}
	return "Unknown"
}

// GetComponentIDByName returns the ComponentID for a given component name string
// The lookup is case-insensitive
func GetComponentIDByName(name string) (ecs.ComponentID, bool) {
	for id, compName := range componentNames {
		if strings.EqualFold(compName, name) {
			return ecs.ComponentID(id), true
		}
	}
	return 0, false
}

// FormatSignature renders a signature using component names
func FormatSignature(s ecs.Signature) string {
	return s.Format(Name)
}
