package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
)

// Secret reads and writes the per-account protected payload.
type Secret struct {
	accounts model.AccountStore
	logger   *logger.Logger
}

// NewSecret creates a new Secret service.
func NewSecret(accounts model.AccountStore, logger *logger.Logger) *Secret {
	return &Secret{
		accounts: accounts,
		logger:   logger,
	}
}

// Submit overwrites the caller's secret. An anonymous session state is
// refused before storage is touched.
func (s *Secret) Submit(ctx context.Context, identity *model.SessionIdentity, value string) (model.Account, error) {
	if Check(identity) != Authenticated {
		return model.Account{}, model.ErrUnauthorized
	}

	account, err := s.accounts.SetSecret(ctx, identity.AccountID, value)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Account{}, model.ErrNotFound
		}
		s.logger.Error("Secret service: failed to set secret",
			"account_id", identity.AccountID,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to set secret: %w", err)
	}

	s.logger.Info("Secret service: secret submitted",
		"account_id", identity.AccountID)

	return account, nil
}

// ListShared returns every shared secret with its owner's display handle.
// The listing is deliberately unauthenticated: the original system exposes
// all set secrets to anyone, and that observable behavior is preserved.
func (s *Secret) ListShared(ctx context.Context) ([]model.SharedSecret, error) {
	accounts, err := s.accounts.ListWithSecret(ctx)
	if err != nil {
		s.logger.Error("Secret service: failed to list accounts with secret",
			"error", err.Error())
		return nil, fmt.Errorf("failed to list accounts with secret: %w", err)
	}

	shared := make([]model.SharedSecret, 0, len(accounts))
	for _, account := range accounts {
		if account.Secret == nil {
			continue
		}
		shared = append(shared, model.SharedSecret{
			Owner:  account.DisplayHandle(),
			Secret: *account.Secret,
		})
	}

	return shared, nil
}
