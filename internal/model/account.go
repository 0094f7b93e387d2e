package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountStore defines persistence operations for accounts.
//
// Username, PasswordHash and the federated subject are append-only: no store
// operation mutates them after Create. SetSecret is the only mutation.
type AccountStore interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByFederatedSubject(ctx context.Context, provider, providerUserID string) (Account, error)
	SetSecret(ctx context.Context, id uuid.UUID, value string) (Account, error)
	ListWithSecret(ctx context.Context) ([]Account, error)
}

// Account represents a stored identity, locally or federally authenticated.
// At least one of {Username+PasswordHash, Provider+ProviderUserID} is set.
type Account struct {
	ID             uuid.UUID
	Username       string
	PasswordHash   []byte
	Provider       string
	ProviderUserID string
	DisplayName    string
	AvatarURL      string
	Secret         *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocal reports whether the account carries a local password credential.
func (a Account) IsLocal() bool {
	return a.Username != "" && len(a.PasswordHash) > 0
}

// IsFederated reports whether the account arrived via an external provider.
func (a Account) IsFederated() bool {
	return a.Provider != "" && a.ProviderUserID != ""
}

// DisplayHandle returns the handle shown next to the account's shared secret.
func (a Account) DisplayHandle() string {
	if a.Username != "" {
		return a.Username
	}
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Provider + ":" + a.ProviderUserID
}

// SharedSecret pairs a secret value with its owner's display handle.
type SharedSecret struct {
	Owner  string `json:"owner"`
	Secret string `json:"secret"`
}
