// Package bus provides an internal event bus for component communication
package bus

import (
	"sync"
)

// EventType identifies different event types
type EventType string

// Event types for NeonLight
const (
	// Light events
	EventTypeStateChanged   EventType = "light.state_changed"
	EventTypePrivacyChanged EventType = "light.privacy_changed"
	EventTypeStartComplete  EventType = "light.start_complete"
	EventTypeAnimationEnded EventType = "light.animation_ended"

	// Remote feed events
	EventTypeConnected    EventType = "remote.connected"
	EventTypeDisconnected EventType = "remote.disconnected"
	EventTypeError        EventType = "remote.error"

	// Config events
	EventTypeConfigReloaded EventType = "config.reloaded"
	EventTypeShaderReloaded EventType = "renderer.shader_reloaded"
)

// Event represents a bus event
type Event struct {
	Type EventType
	Data map[string]any
}

// Handler is a function that handles events
type Handler func(Event)

// Publisher is anything events can be published to
type Publisher interface {
	Publish(event Event)
}

// EventBus is a simple pub/sub event bus
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for an event type
func (b *EventBus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeMultiple adds a handler for multiple event types
func (b *EventBus) SubscribeMultiple(eventTypes []EventType, handler Handler) {
	for _, et := range eventTypes {
		b.Subscribe(et, handler)
	}
}

// Publish sends an event to all subscribed handlers
func (b *EventBus) Publish(event Event) {
	for _, handler := range b.snapshot(event.Type) {
		// Handlers run on their own goroutines so the light loop never blocks
		go handler(event)
	}
}

// PublishSync sends an event and waits for all handlers to complete
func (b *EventBus) PublishSync(event Event) {
	var wg sync.WaitGroup
	for _, handler := range b.snapshot(event.Type) {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			h(event)
		}(handler)
	}
	wg.Wait()
}

// HandlerCount returns the number of handlers subscribed to an event type
func (b *EventBus) HandlerCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]Handler)
}

func (b *EventBus) snapshot(eventType EventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := make([]Handler, len(b.handlers[eventType]))
	copy(handlers, b.handlers[eventType])
	return handlers
}
