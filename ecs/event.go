package ecs

// EventType identifies different types of events
type EventType string

// Entity lifecycle events emitted by World
const (
	EventEntityCreated   EventType = "entity_created"
	EventEntityDestroyed EventType = "entity_destroyed"
)

// Event interface that all events must implement
type Event interface {
	Type() EventType
}

// EntityEvent reports an entity lifecycle change
type EntityEvent struct {
	Kind   EventType
	Entity Entity
}

// Type implements Event
func (e EntityEvent) Type() EventType {
	return e.Kind
}

// EventHandler is a function that processes events
type EventHandler func(Event)

// Subscription identifies a handler registered with Subscribe
type Subscription struct {
	eventType EventType
	id        uint64
}

type subscriber struct {
	id      uint64
	handler EventHandler
}

// EventManager manages event subscriptions and dispatches
type EventManager struct {
	subscribers map[EventType][]subscriber
	nextID      uint64
}

// NewEventManager creates a new event manager
func NewEventManager() *EventManager {
	return &EventManager{
		subscribers: make(map[EventType][]subscriber),
	}
}

// Subscribe registers a handler for a specific event type
func (em *EventManager) Subscribe(eventType EventType, handler EventHandler) Subscription {
	em.nextID++
	em.subscribers[eventType] = append(em.subscribers[eventType], subscriber{id: em.nextID, handler: handler})
	return Subscription{eventType: eventType, id: em.nextID}
}

// Unsubscribe removes a handler registered with Subscribe
func (em *EventManager) Unsubscribe(sub Subscription) {
	handlers := em.subscribers[sub.eventType]
	for i, s := range handlers {
		if s.id != sub.id {
			continue
		}
		handlers = append(handlers[:i], handlers[i+1:]...)
		break
	}
	if len(handlers) == 0 {
		delete(em.subscribers, sub.eventType)
	} else {
		em.subscribers[sub.eventType] = handlers
	}
}

// Emit dispatches an event to all subscribed handlers
func (em *EventManager) Emit(event Event) {
	for _, s := range em.subscribers[event.Type()] {
		s.handler(event)
	}
}
