package wire

// Event is a realtime payload pushed to live sessions. Events are
// fire-and-forget and never persisted.
type Event interface {
	// EventName is the name emitted on the wire.
	EventName() string
	// EventPayload is the body emitted on the wire.
	EventPayload() any
}

// NewMessageEvent notifies a session that a message was created.
type NewMessageEvent struct {
	Message    MessageView `json:"message"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
}

func (NewMessageEvent) EventName() string   { return "newMessage" }
func (e NewMessageEvent) EventPayload() any { return e }

// MessageDeletedEvent notifies a session that a message was soft-deleted.
// The payload is the bare message id, matching the client contract.
type MessageDeletedEvent struct {
	MessageID string
}

func (MessageDeletedEvent) EventName() string   { return "messageDeleted" }
func (e MessageDeletedEvent) EventPayload() any { return e.MessageID }

// PresenceChangedEvent carries the full online-user snapshot. The payload is
// the bare id list, matching the client contract.
type PresenceChangedEvent struct {
	Online []string
}

func (PresenceChangedEvent) EventName() string   { return "getOnlineUsers" }
func (e PresenceChangedEvent) EventPayload() any { return e.Online }
