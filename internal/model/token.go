package model

import "time"

// TokenManager serializes a session identity into an opaque, tamper-evident
// token and back.
type TokenManager interface {
	Generate(identity SessionIdentity, expiresAt time.Time) (string, error)
	Parse(token string) (SessionIdentity, error)
}
