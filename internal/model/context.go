package model

import "context"

// ContextManager moves the authenticated session identity in and out of a
// request context.
type ContextManager interface {
	SetIdentity(ctx context.Context, identity SessionIdentity) context.Context
	GetIdentity(ctx context.Context) (SessionIdentity, bool)
}
