package service

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Sessions is the registry of live map sessions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    ItemStore
	bus      *EventBus
	log      *slog.Logger
}

// NewSessions creates an empty registry. Sessions read from st and publish
// on bus.
func NewSessions(st ItemStore, bus *EventBus, log *slog.Logger) *Sessions {
	if bus == nil {
		bus = DefaultBus
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sessions{
		sessions: make(map[string]*Session),
		store:    st,
		bus:      bus,
		log:      log,
	}
}

// Bus returns the bus the sessions publish on.
func (r *Sessions) Bus() *EventBus {
	return r.bus
}

// Create starts a new session with a fresh ID.
func (r *Sessions) Create() *Session {
	s := NewSession(gonanoid.Must(), r.store, r.bus, r.log)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	r.log.Info("session created", "session", s.ID)
	return s
}

// Get returns the session with the given ID.
func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session.
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.log.Info("session deleted", "session", id)
	r.bus.Publish(Event{Resource: ResourceSession, Action: ActionDeleted, ID: id})
	return nil
}

// List returns the IDs of all sessions, sorted.
func (r *Sessions) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
