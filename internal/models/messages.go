package models

import (
	"context"
	"database/sql"
)

const createMessage = `
INSERT INTO messages (id, sender_id, receiver_id, text, image, reply_to)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, sender_id, receiver_id, text, image, reply_to, seen, deleted, created_at, updated_at
`

type CreateMessageParams struct {
	ID         string
	SenderID   string
	ReceiverID string
	Text       sql.NullString
	Image      sql.NullString
	ReplyTo    sql.NullString
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx, createMessage,
		arg.ID, arg.SenderID, arg.ReceiverID, arg.Text, arg.Image, arg.ReplyTo)
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.ReplyTo,
		&m.Seen, &m.Deleted, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const getMessageByID = `
SELECT id, sender_id, receiver_id, text, image, reply_to, seen, deleted, created_at, updated_at
FROM messages WHERE id = ?
`

func (q *Queries) GetMessageByID(ctx context.Context, id string) (Message, error) {
	row := q.db.QueryRowContext(ctx, getMessageByID, id)
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.ReplyTo,
		&m.Seen, &m.Deleted, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const listConversation = `
SELECT id, sender_id, receiver_id, text, image, reply_to, seen, deleted, created_at, updated_at
FROM messages
WHERE ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
  AND deleted = 0
ORDER BY created_at, id
`

type ListConversationParams struct {
	UserA string
	UserB string
}

func (q *Queries) ListConversation(ctx context.Context, arg ListConversationParams) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx, listConversation, arg.UserA, arg.UserB, arg.UserB, arg.UserA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.ReplyTo,
			&m.Seen, &m.Deleted, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

const markMessageSeen = `
UPDATE messages SET seen = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) MarkMessageSeen(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markMessageSeen, id)
	return err
}

const softDeleteMessage = `
UPDATE messages SET deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

func (q *Queries) SoftDeleteMessage(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, softDeleteMessage, id)
	return err
}

const countUnseenFrom = `
SELECT COUNT(*) FROM messages
WHERE sender_id = ? AND receiver_id = ? AND seen = 0 AND deleted = 0
`

type CountUnseenFromParams struct {
	SenderID   string
	ReceiverID string
}

// CountUnseenFrom counts live unseen messages from one sender to one receiver.
func (q *Queries) CountUnseenFrom(ctx context.Context, arg CountUnseenFromParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnseenFrom, arg.SenderID, arg.ReceiverID).Scan(&count)
	return count, err
}
