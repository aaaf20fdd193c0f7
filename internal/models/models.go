package models

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the minimal query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	ProfilePic   string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Text       sql.NullString
	Image      sql.NullString
	ReplyTo    sql.NullString
	Seen       bool
	Deleted    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PasswordOTP struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}
