package ecs

// System defines an interface for processing entities once per frame
type System interface {
	// Update is called each frame with the elapsed time in seconds
	Update(world *World, dt float64)
}
