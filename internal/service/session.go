package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
)

// Session issues and resolves session tokens. A token is a signed projection
// of the account plus a reference to a server-side session record; revoking
// the record is what invalidates a replayed token after logout.
type Session struct {
	manager model.TokenManager
	store   model.SessionStore
	ttl     time.Duration
	logger  *logger.Logger
}

// NewSession creates a new Session service.
func NewSession(manager model.TokenManager, store model.SessionStore, ttl time.Duration, logger *logger.Logger) *Session {
	return &Session{
		manager: manager,
		store:   store,
		ttl:     ttl,
		logger:  logger,
	}
}

// Issue mints a session token for an authenticated account.
func (s *Session) Issue(ctx context.Context, account model.Account) (string, error) {
	now := time.Now()
	session := model.Session{
		ID:        uuid.New(),
		AccountID: account.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	token, err := s.manager.Generate(model.SessionIdentity{
		AccountID: account.ID,
		SessionID: session.ID,
		Username:  account.Username,
		AvatarURL: account.AvatarURL,
	}, session.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	s.logger.Info("Session service: session issued",
		"account_id", account.ID,
		"session_id", session.ID)

	return token, nil
}

// Resolve reconstructs the session identity from a token. An empty token
// resolves to model.ErrAnonymous; a tampered, expired or revoked token
// resolves to model.ErrInvalidToken. Neither is a storage failure.
func (s *Session) Resolve(ctx context.Context, token string) (model.SessionIdentity, error) {
	if token == "" {
		return model.SessionIdentity{}, model.ErrAnonymous
	}

	identity, err := s.manager.Parse(token)
	if err != nil {
		return model.SessionIdentity{}, model.ErrInvalidToken
	}

	session, err := s.store.GetByID(ctx, identity.SessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.SessionIdentity{}, model.ErrInvalidToken
		}
		s.logger.Error("Session service: failed to get session",
			"session_id", identity.SessionID,
			"error", err.Error())
		return model.SessionIdentity{}, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.Active(time.Now()) || session.AccountID != identity.AccountID {
		return model.SessionIdentity{}, model.ErrInvalidToken
	}

	return identity, nil
}

// Revoke invalidates the session behind a token. Revoking an already revoked
// or unknown token is not an error; logout is idempotent.
func (s *Session) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	identity, err := s.manager.Parse(token)
	if err != nil {
		return model.ErrInvalidToken
	}

	if err := s.store.Revoke(ctx, identity.SessionID, time.Now()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.Info("Session service: session revoked",
		"session_id", identity.SessionID)

	return nil
}

// RevokeAllForAccount invalidates every live session of an account.
func (s *Session) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.store.RevokeAllByAccount(ctx, accountID, time.Now()); err != nil {
		return fmt.Errorf("failed to revoke sessions by account: %w", err)
	}
	return nil
}
