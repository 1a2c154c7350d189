package dashboard

import (
	"sync"
	"time"
)

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry keeps one Controller per browser session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  func() *Controller
	now      func() time.Time
}

func NewRegistry(factory func() *Controller) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the controller for id, creating it on first use.
func (r *Registry) Get(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		s = &session{ctrl: r.factory()}
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	return s.ctrl
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict closes and drops sessions unseen for longer than idle. It returns the
// number of sessions removed.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	var stale []*Controller

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s.ctrl)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// CloseAll closes and drops every session.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range all {
		s.ctrl.Close()
	}
	return len(all)
}
