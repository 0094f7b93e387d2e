package model

import (
	"context"
	"time"
)

// PendingStateDuration is the TTL for pending OAuth authorization states.
const PendingStateDuration = time.Minute * 10

// OAuthStateStore persists pending OAuth authorization states. A state is
// single-use: Consume marks it so a replayed callback is rejected.
type OAuthStateStore interface {
	Create(ctx context.Context, state OAuthState) error
	GetByState(ctx context.Context, state string) (OAuthState, error)
	Consume(ctx context.Context, state string) error
}

// OAuthState describes a pending provider authorization round-trip.
type OAuthState struct {
	State        string
	Provider     string
	CodeVerifier string
	ExpiresAt    time.Time
	Consumed     bool
}
