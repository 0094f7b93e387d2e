package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
	"github.com/ivolkov/secrethold/internal/password"
)

// Auth authenticates accounts by local credentials or federated identity and
// registers new local accounts.
type Auth struct {
	accounts model.AccountStore
	hasher   *password.Hasher
	logger   *logger.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(accounts model.AccountStore, hasher *password.Hasher, logger *logger.Logger) *Auth {
	return &Auth{
		accounts: accounts,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register creates a local account with a hashed password. A username
// collision surfaces as model.ErrConflict; no second account is created.
func (a *Auth) Register(ctx context.Context, username, plaintext string) (model.Account, error) {
	a.logger.Debug("Auth service: registering account",
		"username", username)

	if username == "" || plaintext == "" {
		return model.Account{}, model.ErrInvalidCredentials
	}

	hash, err := a.hasher.Hash(plaintext)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account, err := a.accounts.Create(ctx, model.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			a.logger.Info("Auth service: username already taken",
				"username", username)
			return model.Account{}, model.ErrConflict
		}
		a.logger.Error("Auth service: failed to create account",
			"username", username,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	a.logger.Info("Auth service: account registered",
		"username", username,
		"account_id", account.ID)

	return account, nil
}

// Authenticate is the single entry point for the closed set of credential
// variants. It returns the matching account or a typed failure.
func (a *Auth) Authenticate(ctx context.Context, credentials model.Credentials) (model.Account, error) {
	switch c := credentials.(type) {
	case model.LocalCredentials:
		return a.authenticateLocal(ctx, c)
	case model.FederatedIdentity:
		return a.resolveFederated(ctx, c)
	default:
		return model.Account{}, fmt.Errorf("unsupported credentials type %T", credentials)
	}
}

// authenticateLocal verifies a claimed username and password. The unknown-user
// and bad-password cases are logged distinctly but both return
// model.ErrInvalidCredentials so the boundary cannot tell them apart.
func (a *Auth) authenticateLocal(ctx context.Context, c model.LocalCredentials) (model.Account, error) {
	account, err := a.accounts.GetByUsername(ctx, c.Username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: login for unknown username",
				"username", c.Username)
			return model.Account{}, model.ErrInvalidCredentials
		}
		a.logger.Error("Auth service: failed to get account by username",
			"username", c.Username,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to get account by username: %w", err)
	}

	if err := a.hasher.Compare(account.PasswordHash, c.Password); err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			a.logger.Info("Auth service: password mismatch",
				"username", c.Username)
			return model.Account{}, model.ErrInvalidCredentials
		}
		return model.Account{}, fmt.Errorf("failed to verify password: %w", err)
	}

	return account, nil
}

// resolveFederated finds the account for a provider-asserted subject, creating
// one on first login. Two racing first-logins resolve to a single account: a
// creation conflict means another request won, so the winner is re-fetched.
// Profile hints never overwrite an existing account.
func (a *Auth) resolveFederated(ctx context.Context, c model.FederatedIdentity) (model.Account, error) {
	account, err := a.accounts.GetByFederatedSubject(ctx, c.Provider, c.ProviderUserID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get account by federated subject",
			"provider", c.Provider,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to get account by federated subject: %w", err)
	}

	now := time.Now()
	created, err := a.accounts.Create(ctx, model.Account{
		ID:             uuid.New(),
		Provider:       c.Provider,
		ProviderUserID: c.ProviderUserID,
		DisplayName:    c.Hints.DisplayName,
		AvatarURL:      c.Hints.AvatarURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err == nil {
		a.logger.Info("Auth service: federated account created",
			"provider", c.Provider,
			"account_id", created.ID)
		return created, nil
	}
	if !errors.Is(err, model.ErrConflict) {
		a.logger.Error("Auth service: failed to create federated account",
			"provider", c.Provider,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to create federated account: %w", err)
	}

	// Lost the creation race; the uniqueness index guarantees the winner
	// exists, so return it.
	winner, err := a.accounts.GetByFederatedSubject(ctx, c.Provider, c.ProviderUserID)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to get account after creation conflict: %w", err)
	}

	return winner, nil
}
