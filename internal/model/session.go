package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore persists server-side session records. Tokens reference these
// records by ID; revocation here is what makes a replayed token dead.
type SessionStore interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeAllByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error
}

// Session is the server-side record behind a session token. It is immutable
// once created except for revocation.
type Session struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session is neither revoked nor expired at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

// SessionIdentity is the minimal projection of an account carried through a
// request. It never includes the password hash or the secret.
type SessionIdentity struct {
	AccountID uuid.UUID
	SessionID uuid.UUID
	Username  string
	AvatarURL string
}
