// Package events provides the in-process publish/subscribe bus used to
// decouple theme changes, name edits, exports and UI notifications.
package events

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Handler receives the payload passed to Emit.
type Handler func(data any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus dispatches events to subscribers synchronously, in subscription order.
// A Bus is created by the application root and passed to the components that
// need it.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscription
	logger *log.Logger
}

// New creates an empty bus.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger.WithPrefix("events"),
	}
}

// On subscribes handler to event and returns a function that removes it.
func (b *Bus) On(event string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscription{id: id, handler: handler})

	return func() { b.remove(event, id) }
}

// Once subscribes handler for a single delivery of event.
func (b *Bus) Once(event string, handler Handler) func() {
	var once sync.Once
	var unsubscribe func()
	unsubscribe = b.On(event, func(data any) {
		once.Do(func() {
			unsubscribe()
			handler(data)
		})
	})
	return unsubscribe
}

// Emit delivers data to every subscriber of event. A handler that panics is
// logged and the remaining handlers still run.
func (b *Bus) Emit(event string, data any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(event, s.handler, data)
	}
}

func (b *Bus) deliver(event string, handler Handler, data any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler failed", "event", event, "panic", r)
		}
	}()
	handler(data)
}

// Off removes every subscriber of event.
func (b *Bus) Off(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, event)
}

// Clear removes all subscribers.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscription)
}

// Count returns the number of subscribers of event.
func (b *Bus) Count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}

func (b *Bus) remove(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[event]
	for i, s := range subs {
		if s.id == id {
			b.subs[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[event]) == 0 {
		delete(b.subs, event)
	}
}
