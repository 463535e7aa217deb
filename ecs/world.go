package ecs

// World ties the entity registry to the systems and events that act on it.
// Everything runs on the caller's goroutine; World does no locking.
type World struct {
	registry     *Registry
	systems      []System
	eventManager *EventManager
}

// NewWorld creates a world with room for capacity live entities
func NewWorld(capacity int) *World {
	return &World{
		registry:     NewRegistry(capacity),
		systems:      make([]System, 0),
		eventManager: NewEventManager(),
	}
}

// Registry returns the entity registry
func (w *World) Registry() *Registry {
	return w.registry
}

// CreateEntity allocates an entity and emits EventEntityCreated
func (w *World) CreateEntity() (Entity, error) {
	e, err := w.registry.Create()
	if err != nil {
		return Entity{}, err
	}
	w.eventManager.Emit(EntityEvent{Kind: EventEntityCreated, Entity: e})
	return e, nil
}

// DestroyEntity releases e and emits EventEntityDestroyed
func (w *World) DestroyEntity(e Entity) error {
	if err := w.registry.Destroy(e); err != nil {
		return err
	}
	w.eventManager.Emit(EntityEvent{Kind: EventEntityDestroyed, Entity: e})
	return nil
}

// AddSystem adds a system to the world
func (w *World) AddSystem(system System) {
	w.systems = append(w.systems, system)
}

// Systems returns all systems registered in the world
func (w *World) Systems() []System {
	return w.systems
}

// Update runs every system in registration order
func (w *World) Update(dt float64) {
	for _, system := range w.systems {
		system.Update(w, dt)
	}
}

// Events returns the world's event manager
func (w *World) Events() *EventManager {
	return w.eventManager
}
