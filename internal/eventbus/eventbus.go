package eventbus

import (
	"log"
	"runtime/debug"
	"sync"

	"quotacard/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventLoadCompleted    = domain.EventLoadCompleted
	EventLoadFailed       = domain.EventLoadFailed
	EventSearchRequested  = domain.EventSearchRequested
	EventSearchCompleted  = domain.EventSearchCompleted
	EventSearchFailed     = domain.EventSearchFailed
	EventSelectionChanged = domain.EventSelectionChanged
	EventSaveRequested    = domain.EventSaveRequested
	EventConfigSaved      = domain.EventConfigSaved
	EventSaveFailed       = domain.EventSaveFailed
	EventQuoteRequested   = domain.EventQuoteRequested
	EventQuoteFetched     = domain.EventQuoteFetched
	EventError            = domain.EventError
)

// Re-export domain event types
type LoadCompletedEvent = domain.LoadCompletedEvent
type LoadFailedEvent = domain.LoadFailedEvent
type SearchRequestedEvent = domain.SearchRequestedEvent
type SearchCompletedEvent = domain.SearchCompletedEvent
type SearchFailedEvent = domain.SearchFailedEvent
type SelectionChangedEvent = domain.SelectionChangedEvent
type SaveRequestedEvent = domain.SaveRequestedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent
type SaveFailedEvent = domain.SaveFailedEvent
type QuoteRequestedEvent = domain.QuoteRequestedEvent
type QuoteFetchedEvent = domain.QuoteFetchedEvent
type ErrorEvent = domain.ErrorEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
}

// bus is the concrete implementation of EventBus.
//
// Delivery is synchronous: Publish calls every subscribed handler before it
// returns. The editor is single-threaded and event-driven, so ordering
// between a mutation and its save request matters; handlers that do remote
// work must hand it off to their own goroutine (the quotable service does).
type bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]EventHandler
}

// New creates a new event bus
func New() EventBus {
	return &bus{
		handlers: make(map[EventType]map[int]EventHandler),
	}
}

// Publish delivers an event to all subscribers of its type.
func (b *bus) Publish(event DomainEvent) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.handlers[event.Type()]))
	for _, h := range b.handlers[event.Type()] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.invoke(handler, event)
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]EventHandler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[eventType][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[eventType], id)
	}
}

// invoke calls a handler, containing any panic so one bad subscriber cannot
// take the editor down.
func (b *bus) invoke(handler EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
		}
	}()
	handler(event)
}
