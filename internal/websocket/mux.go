package websocket

import (
	"fmt"
	"strings"
	"sync"

	"github.com/merke/chattr/internal/presence"
	"github.com/merke/chattr/internal/wire"
)

// SessionPusher is one transport's half of delivery: it can push an event to
// a session it owns.
type SessionPusher interface {
	Push(session presence.SessionHandle, event wire.Event) error
}

// PusherMux routes pushes to the transport that owns the session. Session
// handles are namespaced "<transport>:<id>" so the Socket.IO server and the
// plain WebSocket server can share one presence registry.
type PusherMux struct {
	mu      sync.RWMutex
	pushers map[string]SessionPusher
}

// NewPusherMux creates an empty mux.
func NewPusherMux() *PusherMux {
	return &PusherMux{pushers: make(map[string]SessionPusher)}
}

// Register attaches a transport under a handle prefix.
func (m *PusherMux) Register(prefix string, pusher SessionPusher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushers[prefix] = pusher
}

// Push implements relay.Pusher.
func (m *PusherMux) Push(session presence.SessionHandle, event wire.Event) error {
	prefix, _, ok := strings.Cut(string(session), ":")
	if !ok {
		return fmt.Errorf("malformed session handle %q", session)
	}
	m.mu.RLock()
	pusher := m.pushers[prefix]
	m.mu.RUnlock()
	if pusher == nil {
		return fmt.Errorf("no transport registered for session %q", session)
	}
	return pusher.Push(session, event)
}

func errSessionGone(session presence.SessionHandle) error {
	return fmt.Errorf("session %q is no longer connected", session)
}
