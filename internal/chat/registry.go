package chat

import (
	"context"
	"sync"

	"github.com/jonathan/resume-coach/internal/llm"
)

// Registry hands out one Manager per session, creating them on first use.
type Registry struct {
	mu        sync.Mutex
	managers  map[string]*Manager
	completer llm.Completer
	counter   TokenCounter
	store     Store
	cfg       Config
}

// NewRegistry creates a Registry whose managers share completer, counter and store.
func NewRegistry(completer llm.Completer, counter TokenCounter, store Store, cfg Config) *Registry {
	return &Registry{
		managers:  make(map[string]*Manager),
		completer: completer,
		counter:   counter,
		store:     store,
		cfg:       cfg,
	}
}

// Get returns the session's manager, restoring it from the store if it is not loaded yet.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[sessionID]; ok {
		return m, nil
	}

	m, err := NewManager(ctx, sessionID, r.completer, r.counter, r.store, r.cfg)
	if err != nil {
		return nil, err
	}
	r.managers[sessionID] = m
	return m, nil
}

// Create starts a session with the given persona. An empty persona keeps the default.
func (r *Registry) Create(ctx context.Context, sessionID, persona string) (*Manager, error) {
	m, err := r.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if persona != "" && persona != m.Persona() {
		if err := m.SetPersona(ctx, persona); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Len returns the number of loaded sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}
