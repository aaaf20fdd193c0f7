package chat

import "errors"

// Operation errors. Handlers map these onto HTTP statuses; delivery failures
// are never in this taxonomy because they are not surfaced to callers.
var (
	// ErrNotFound means a message, user or reply target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the requester does not own the message.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the receiver has blocked the sender.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream means the store or upload collaborator failed.
	ErrUpstream = errors.New("upstream failure")
)
