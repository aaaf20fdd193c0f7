package models

import (
	"context"
	"time"
)

const createPasswordOTP = `
INSERT INTO password_otps (id, email, code, expires_at) VALUES (?, ?, ?, ?)
`

type CreatePasswordOTPParams struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
}

func (q *Queries) CreatePasswordOTP(ctx context.Context, arg CreatePasswordOTPParams) error {
	_, err := q.db.ExecContext(ctx, createPasswordOTP, arg.ID, arg.Email, arg.Code, arg.ExpiresAt)
	return err
}

const getPasswordOTP = `
SELECT id, email, code, expires_at, created_at
FROM password_otps WHERE email = ? AND code = ?
`

type GetPasswordOTPParams struct {
	Email string
	Code  string
}

func (q *Queries) GetPasswordOTP(ctx context.Context, arg GetPasswordOTPParams) (PasswordOTP, error) {
	row := q.db.QueryRowContext(ctx, getPasswordOTP, arg.Email, arg.Code)
	var o PasswordOTP
	err := row.Scan(&o.ID, &o.Email, &o.Code, &o.ExpiresAt, &o.CreatedAt)
	return o, err
}

const deletePasswordOTP = `
DELETE FROM password_otps WHERE id = ?
`

func (q *Queries) DeletePasswordOTP(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deletePasswordOTP, id)
	return err
}

const deleteExpiredPasswordOTPs = `
DELETE FROM password_otps WHERE expires_at < ?
`

// DeleteExpiredPasswordOTPs prunes codes whose expiry has passed. The bound
// now-parameter keeps both sides of the comparison in the driver's timestamp
// format; CURRENT_TIMESTAMP would compare a local-offset string against UTC.
func (q *Queries) DeleteExpiredPasswordOTPs(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteExpiredPasswordOTPs, time.Now())
	return err
}
