package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/merke/chattr/internal/models"
	"github.com/merke/chattr/internal/wire"
)

// MessageStore is the subset of message queries used by the coordinator.
type MessageStore interface {
	CreateMessage(ctx context.Context, arg models.CreateMessageParams) (models.Message, error)
	GetMessageByID(ctx context.Context, id string) (models.Message, error)
	ListConversation(ctx context.Context, arg models.ListConversationParams) ([]models.Message, error)
	MarkMessageSeen(ctx context.Context, id string) error
	SoftDeleteMessage(ctx context.Context, id string) error
	CountUnseenFrom(ctx context.Context, arg models.CountUnseenFromParams) (int64, error)
}

// UserDirectory is the subset of user queries used by the coordinator.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ListContactIDs(ctx context.Context, userID string) ([]string, error)
	IsBlocked(ctx context.Context, arg models.BlockParams) (bool, error)
}

// Uploader turns an inline image payload into a durable reference.
type Uploader interface {
	Upload(data []byte) (string, error)
}

// Notifier pushes realtime events to a user's live session, best effort.
// Satisfied by *relay.Relay.
type Notifier interface {
	DeliverTo(userID string, event wire.Event)
}

// Coordinator orchestrates the message lifecycle: persist first, then notify.
// A failed delivery never rolls back a successful persistence.
type Coordinator struct {
	store     MessageStore
	directory UserDirectory
	uploader  Uploader
	notifier  Notifier
	newID     func() string
}

// NewCoordinator builds a coordinator over its collaborators.
func NewCoordinator(store MessageStore, directory UserDirectory, uploader Uploader, notifier Notifier, newID func() string) *Coordinator {
	return &Coordinator{
		store:     store,
		directory: directory,
		uploader:  uploader,
		notifier:  notifier,
		newID:     newID,
	}
}

// SendInput carries the optional parts of a send request. ImageData is the
// decoded inline payload, empty when the message has no image.
type SendInput struct {
	Text      string
	ImageData []byte
	ReplyTo   string
}

// Send persists a new message and notifies both participants' live sessions.
//
// The receiver's block list is checked first; an inline image is uploaded
// before anything is persisted; a reply target must resolve to a live
// message. The message is acknowledged to the caller once persisted,
// regardless of delivery outcome.
func (c *Coordinator) Send(ctx context.Context, senderID, receiverID string, in SendInput) (wire.MessageView, error) {
	sender, err := c.directory.GetUserByID(ctx, senderID)
	if err != nil {
		return wire.MessageView{}, lookupErr("sender", err)
	}
	receiver, err := c.directory.GetUserByID(ctx, receiverID)
	if err != nil {
		return wire.MessageView{}, lookupErr("receiver", err)
	}

	blocked, err := c.directory.IsBlocked(ctx, models.BlockParams{
		UserID:    receiverID,
		BlockedID: senderID,
	})
	if err != nil {
		return wire.MessageView{}, fmt.Errorf("block-list check: %w: %w", ErrUpstream, err)
	}
	if blocked {
		return wire.MessageView{}, fmt.Errorf("%w: you are blocked by this user", ErrForbidden)
	}

	var image sql.NullString
	if len(in.ImageData) > 0 {
		ref, err := c.uploader.Upload(in.ImageData)
		if err != nil {
			return wire.MessageView{}, fmt.Errorf("image upload: %w: %w", ErrUpstream, err)
		}
		image = sql.NullString{String: ref, Valid: true}
	}

	var replyTo sql.NullString
	var replyView *wire.ReplyView
	if in.ReplyTo != "" {
		target, err := c.store.GetMessageByID(ctx, in.ReplyTo)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && target.Deleted) {
			return wire.MessageView{}, fmt.Errorf("%w: replied message not found", ErrNotFound)
		}
		if err != nil {
			return wire.MessageView{}, fmt.Errorf("reply lookup: %w: %w", ErrUpstream, err)
		}
		replyTo = sql.NullString{String: target.ID, Valid: true}
		replyView = wire.NewReplyView(target)
	}

	var text sql.NullString
	if in.Text != "" {
		text = sql.NullString{String: in.Text, Valid: true}
	}

	msg, err := c.store.CreateMessage(ctx, models.CreateMessageParams{
		ID:         c.newID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      image,
		ReplyTo:    replyTo,
	})
	if err != nil {
		return wire.MessageView{}, fmt.Errorf("persist message: %w: %w", ErrUpstream, err)
	}

	view := wire.NewMessageView(msg, sender, receiver, replyView)
	event := wire.NewMessageEvent{
		Message:    view,
		SenderID:   senderID,
		ReceiverID: receiverID,
	}

	// Persisted; from here on the send has succeeded no matter what the
	// transport does. The sender's own live session is notified too so other
	// devices stay in sync.
	c.notifier.DeliverTo(receiverID, event)
	c.notifier.DeliverTo(senderID, event)

	return view, nil
}

// Delete soft-deletes a message. Only the original sender may delete; the
// flag never reverts, and a repeat delete is a no-op success.
func (c *Coordinator) Delete(ctx context.Context, requesterID, messageID string) error {
	msg, err := c.store.GetMessageByID(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("message lookup: %w: %w", ErrUpstream, err)
	}

	if msg.SenderID != requesterID {
		return fmt.Errorf("%w: only the sender may delete a message", ErrUnauthorized)
	}

	if msg.Deleted {
		return nil
	}

	if err := c.store.SoftDeleteMessage(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w: %w", ErrUpstream, err)
	}

	c.notifier.DeliverTo(msg.ReceiverID, wire.MessageDeletedEvent{MessageID: messageID})

	return nil
}

// MarkSeen flips a message to seen. Idempotent; seen never reverts. No
// delivery event is emitted for this transition.
func (c *Coordinator) MarkSeen(ctx context.Context, messageID string) error {
	msg, err := c.store.GetMessageByID(ctx, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: message not found", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("message lookup: %w: %w", ErrUpstream, err)
	}

	if msg.Seen {
		return nil
	}

	if err := c.store.MarkMessageSeen(ctx, messageID); err != nil {
		return fmt.Errorf("mark seen: %w: %w", ErrUpstream, err)
	}

	return nil
}

// UnseenCounts returns, per contact of the requester, the number of live
// unseen messages from that contact. Contacts with zero unseen messages are
// omitted.
func (c *Coordinator) UnseenCounts(ctx context.Context, requesterID string) (map[string]int64, error) {
	contactIDs, err := c.directory.ListContactIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w: %w", ErrUpstream, err)
	}

	counts := make(map[string]int64)
	for _, contactID := range contactIDs {
		n, err := c.store.CountUnseenFrom(ctx, models.CountUnseenFromParams{
			SenderID:   contactID,
			ReceiverID: requesterID,
		})
		if err != nil {
			return nil, fmt.Errorf("count unseen: %w: %w", ErrUpstream, err)
		}
		if n > 0 {
			counts[contactID] = n
		}
	}
	return counts, nil
}

// Conversation returns the live messages between two users, oldest first,
// with participants and reply excerpts resolved.
func (c *Coordinator) Conversation(ctx context.Context, userID, otherID string) ([]wire.MessageView, error) {
	user, err := c.directory.GetUserByID(ctx, userID)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	other, err := c.directory.GetUserByID(ctx, otherID)
	if err != nil {
		return nil, lookupErr("user", err)
	}

	messages, err := c.store.ListConversation(ctx, models.ListConversationParams{
		UserA: userID,
		UserB: otherID,
	})
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w: %w", ErrUpstream, err)
	}

	participants := map[string]models.User{
		user.ID:  user,
		other.ID: other,
	}

	views := make([]wire.MessageView, 0, len(messages))
	for _, msg := range messages {
		var replyView *wire.ReplyView
		if msg.ReplyTo.Valid {
			target, err := c.store.GetMessageByID(ctx, msg.ReplyTo.String)
			if err == nil {
				replyView = wire.NewReplyView(target)
			}
		}
		views = append(views, wire.NewMessageView(
			msg, participants[msg.SenderID], participants[msg.ReceiverID], replyView))
	}
	return views, nil
}

func lookupErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	}
	return fmt.Errorf("%s lookup: %w: %w", what, ErrUpstream, err)
}
