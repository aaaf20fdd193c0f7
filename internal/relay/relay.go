package relay

import (
	"github.com/merke/chattr/internal/logger"
	"github.com/merke/chattr/internal/presence"
	"github.com/merke/chattr/internal/wire"
)

// Pusher delivers an event over one live transport session. Implemented by
// the transport adapters.
type Pusher interface {
	Push(session presence.SessionHandle, event wire.Event) error
}

// Relay fans realtime events out to live sessions. Delivery is best effort:
// an offline recipient sees the message on next fetch, not via push, and a
// failed push is logged and forgotten. Durability lives in the message store.
type Relay struct {
	registry *presence.Registry
	pusher   Pusher
}

// New creates a relay over the given registry and transport pusher.
func New(registry *presence.Registry, pusher Pusher) *Relay {
	return &Relay{
		registry: registry,
		pusher:   pusher,
	}
}

// DeliverTo pushes an event to the user's live session. If the user has no
// session the event is dropped; there is no queue and no retry.
func (r *Relay) DeliverTo(userID string, event wire.Event) {
	session, ok := r.registry.Lookup(userID)
	if !ok {
		logger.Tracef("Relay: user %s offline, dropping %s", userID, event.EventName())
		return
	}
	if err := r.pusher.Push(session, event); err != nil {
		// The session may have died between lookup and push.
		logger.Warnf("Relay: push %s to user %s (session %s) failed: %v",
			event.EventName(), userID, session, err)
	}
}

// BroadcastPresence pushes the current online-user snapshot to every live
// session. Called on each connect and disconnect.
func (r *Relay) BroadcastPresence() {
	online := r.registry.Snapshot()
	event := wire.PresenceChangedEvent{Online: online}
	for _, userID := range online {
		session, ok := r.registry.Lookup(userID)
		if !ok {
			// Disconnected since the snapshot; nothing to push.
			continue
		}
		if err := r.pusher.Push(session, event); err != nil {
			logger.Warnf("Relay: presence push to user %s (session %s) failed: %v",
				userID, session, err)
		}
	}
}
