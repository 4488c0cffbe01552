package service

import (
	"sync"

	"github.com/joeblew999/plat-sitemap/internal/navigate"
	"github.com/joeblew999/plat-sitemap/internal/scene"
)

// Event resources.
const (
	ResourceScene   = "scene"
	ResourceRoute   = "route"
	ResourceSession = "session"
)

// ActionDeleted is the action of a session's final event.
const ActionDeleted = "deleted"

// Event is a change in one map session.
type Event struct {
	Resource string // ResourceScene, ResourceRoute or ResourceSession
	Action   string // scene event type, "navigated" or ActionDeleted
	ID       string // session ID
	Scene    *scene.Event
	Route    *navigate.Params
}

// EventBus is a simple fan-out pub/sub for session events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// DefaultBus is the package-level event bus.
var DefaultBus = NewEventBus()
