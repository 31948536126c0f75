package server

// Registry tracks the active sessions of a single room, keyed by
// participant id. It is owned exclusively by that room and carries no lock
// of its own; the room's mutex serializes all access. Enumeration order is
// unspecified.
type Registry struct {
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session under its participant id. If another session
// already holds the id it is returned so the caller can close its
// connection; the new session takes the slot either way.
func (g *Registry) Add(s *Session) (replaced *Session) {
	replaced = g.sessions[s.ID]
	g.sessions[s.ID] = s
	return replaced
}

// Remove deletes the session with the given id and returns it, or nil if
// the id was not registered.
func (g *Registry) Remove(id string) *Session {
	s, ok := g.sessions[id]
	if !ok {
		return nil
	}
	delete(g.sessions, id)
	return s
}

// Get looks up a session by participant id.
func (g *Registry) Get(id string) (*Session, bool) {
	s, ok := g.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (g *Registry) Count() int {
	return len(g.sessions)
}

// ForEach calls fn for every registered session.
func (g *Registry) ForEach(fn func(*Session)) {
	for _, s := range g.sessions {
		fn(s)
	}
}

// ForEachExcept calls fn for every registered session except the one with
// the given participant id.
func (g *Registry) ForEachExcept(exclude string, fn func(*Session)) {
	for id, s := range g.sessions {
		if id == exclude {
			continue
		}
		fn(s)
	}
}
