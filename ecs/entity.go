package ecs

import "fmt"

// MaxEntities is the default capacity of a Registry
const MaxEntities = 5000

// Entity identifies one object in the world. The generation distinguishes
// a recycled ID from the entity that held it before.
type Entity struct {
	ID         uint32
	Generation uint32
}

// String formats the entity as id#generation
func (e Entity) String() string {
	return fmt.Sprintf("%d#%d", e.ID, e.Generation)
}
