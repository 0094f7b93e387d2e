package model

import "errors"

var (
	// ErrNotFound indicates a lookup miss in a store.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a uniqueness violation on create.
	ErrConflict = errors.New("record already exists")
	// ErrInvalidCredentials is the single caller-facing outcome for both
	// unknown-user and bad-password failures.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates an access gate refusal.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken indicates a malformed, tampered, expired or revoked
	// session token.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrAnonymous indicates the absence of a session token. It is an
	// observable state, not a failure.
	ErrAnonymous = errors.New("anonymous session")
	// ErrInvalidState indicates an unknown, expired or consumed OAuth state.
	ErrInvalidState = errors.New("invalid oauth state")
)
