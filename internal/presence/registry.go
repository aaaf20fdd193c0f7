package presence

import (
	"sync"
)

// SessionHandle identifies one live transport connection. Handles are issued
// by the transport layer and are never reused after disconnect.
type SessionHandle string

// Registry tracks which users currently have a live connection. Each user has
// at most one session; a reconnect overwrites the previous entry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]SessionHandle // userID -> session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]SessionHandle),
	}
}

// Announce records that user is reachable over session, replacing any prior
// entry. The replaced session is orphaned, not closed.
func (r *Registry) Announce(userID string, session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = session
}

// Revoke removes the entry for user only if the stored session still equals
// the given one. A stale disconnect racing a reconnect must not erase the
// newer session, so the equality check is mandatory.
func (r *Registry) Revoke(userID string, session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[userID] == session {
		delete(r.sessions, userID)
	}
}

// Lookup returns the user's live session, if any.
func (r *Registry) Lookup(userID string) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[userID]
	return session, ok
}

// Snapshot returns the ids of all currently-online users.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		users = append(users, userID)
	}
	return users
}
