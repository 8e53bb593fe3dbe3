package ecs

// EventType names a kind of event routed through the world's event bus.
type EventType string

// Event is a directed ECS event. Entity is the target the event is raised on;
// handlers mark Handled to tell the raiser the event was consumed.
type Event struct {
	Type    EventType
	Entity  Entity
	Data    any
	Handled bool
}

// EventHandler reacts to an event. Handlers run synchronously on the caller's
// goroutine, in subscription order.
type EventHandler func(w *World, evt *Event)

// EventBus dispatches events to subscribers.
type EventBus struct {
	handlers map[EventType][]EventHandler
	depth    int
}

// Subscribe registers h for events of type t.
func (b *EventBus) Subscribe(t EventType, h EventHandler) {
	if b == nil || h == nil {
		return
	}
	if b.handlers == nil {
		b.handlers = make(map[EventType][]EventHandler)
	}
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish dispatches evt to every subscriber of its type and reports whether
// any of them marked it handled.
func (b *EventBus) Publish(w *World, evt *Event) bool {
	if b == nil || evt == nil {
		return false
	}
	b.depth++
	defer func() { b.depth-- }()
	for _, h := range b.handlers[evt.Type] {
		h(w, evt)
	}
	return evt.Handled
}

// Dispatching reports whether an event is currently being dispatched.
func (b *EventBus) Dispatching() bool {
	return b != nil && b.depth > 0
}

// Subscribers returns the number of handlers registered for t.
func (b *EventBus) Subscribers(t EventType) int {
	if b == nil {
		return 0
	}
	return len(b.handlers[t])
}
