package models

import (
	"context"
)

const createUser = `
INSERT INTO users (id, email, full_name, password_hash, bio)
VALUES (?, ?, ?, ?, ?)
RETURNING id, email, full_name, password_hash, profile_pic, bio, created_at, updated_at
`

type CreateUserParams struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Bio          string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.ID, arg.Email, arg.FullName, arg.PasswordHash, arg.Bio)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, full_name, password_hash, profile_pic, bio, created_at, updated_at
FROM users WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, full_name, password_hash, profile_pic, bio, created_at, updated_at
FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const updateUserProfile = `
UPDATE users
SET full_name = ?, bio = ?, profile_pic = COALESCE(?, profile_pic), updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING id, email, full_name, password_hash, profile_pic, bio, created_at, updated_at
`

type UpdateUserProfileParams struct {
	FullName   string
	Bio        string
	ProfilePic *string
	ID         string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUserProfile, arg.FullName, arg.Bio, arg.ProfilePic, arg.ID)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`

type UpdateUserPasswordParams struct {
	PasswordHash string
	ID           string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.ID)
	return err
}

const searchUsers = `
SELECT id, email, full_name, password_hash, profile_pic, bio, created_at, updated_at
FROM users
WHERE (full_name LIKE '%' || ? || '%' COLLATE NOCASE
   OR email LIKE '%' || ? || '%' COLLATE NOCASE)
  AND id != ?
ORDER BY full_name
`

type SearchUsersParams struct {
	Query     string
	ExcludeID string
}

func (q *Queries) SearchUsers(ctx context.Context, arg SearchUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, searchUsers, arg.Query, arg.Query, arg.ExcludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const addContact = `
INSERT OR IGNORE INTO contacts (user_id, contact_id) VALUES (?, ?)
`

type ContactParams struct {
	UserID    string
	ContactID string
}

func (q *Queries) AddContact(ctx context.Context, arg ContactParams) error {
	_, err := q.db.ExecContext(ctx, addContact, arg.UserID, arg.ContactID)
	return err
}

const removeContact = `
DELETE FROM contacts WHERE user_id = ? AND contact_id = ?
`

func (q *Queries) RemoveContact(ctx context.Context, arg ContactParams) error {
	_, err := q.db.ExecContext(ctx, removeContact, arg.UserID, arg.ContactID)
	return err
}

const listContacts = `
SELECT u.id, u.email, u.full_name, u.password_hash, u.profile_pic, u.bio, u.created_at, u.updated_at
FROM contacts c JOIN users u ON u.id = c.contact_id
WHERE c.user_id = ?
ORDER BY u.full_name
`

func (q *Queries) ListContacts(ctx context.Context, userID string) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listContacts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const listContactIDs = `
SELECT contact_id FROM contacts WHERE user_id = ?
`

func (q *Queries) ListContactIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listContactIDs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const blockUser = `
INSERT OR IGNORE INTO blocked_users (user_id, blocked_id) VALUES (?, ?)
`

type BlockParams struct {
	UserID    string
	BlockedID string
}

func (q *Queries) BlockUser(ctx context.Context, arg BlockParams) error {
	_, err := q.db.ExecContext(ctx, blockUser, arg.UserID, arg.BlockedID)
	return err
}

const unblockUser = `
DELETE FROM blocked_users WHERE user_id = ? AND blocked_id = ?
`

func (q *Queries) UnblockUser(ctx context.Context, arg BlockParams) error {
	_, err := q.db.ExecContext(ctx, unblockUser, arg.UserID, arg.BlockedID)
	return err
}

const listBlockedUsers = `
SELECT u.id, u.email, u.full_name, u.password_hash, u.profile_pic, u.bio, u.created_at, u.updated_at
FROM blocked_users b JOIN users u ON u.id = b.blocked_id
WHERE b.user_id = ?
ORDER BY u.full_name
`

func (q *Queries) ListBlockedUsers(ctx context.Context, userID string) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listBlockedUsers, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const listBlockedIDs = `
SELECT blocked_id FROM blocked_users WHERE user_id = ?
`

func (q *Queries) ListBlockedIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listBlockedIDs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const isBlocked = `
SELECT COUNT(*) FROM blocked_users WHERE user_id = ? AND blocked_id = ?
`

// IsBlocked reports whether arg.UserID has arg.BlockedID in their block list.
func (q *Queries) IsBlocked(ctx context.Context, arg BlockParams) (bool, error) {
	var count int
	err := q.db.QueryRowContext(ctx, isBlocked, arg.UserID, arg.BlockedID).Scan(&count)
	return count > 0, err
}
