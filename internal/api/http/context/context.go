package context

import (
	"context"

	"github.com/ivolkov/secrethold/internal/model"
)

type contextKey int

// identityKey is the context key used to store the resolved session identity.
const identityKey contextKey = iota

// Manager moves the resolved session identity in and out of request contexts.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentity returns a child context carrying the session identity.
func (m *Manager) SetIdentity(ctx context.Context, identity model.SessionIdentity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the session identity from the context. The second
// return value is false for anonymous requests.
func (m *Manager) GetIdentity(ctx context.Context) (model.SessionIdentity, bool) {
	identity, ok := ctx.Value(identityKey).(model.SessionIdentity)
	return identity, ok
}
