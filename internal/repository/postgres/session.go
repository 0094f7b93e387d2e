package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ivolkov/secrethold/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) error {
	const query = `
        INSERT INTO sessions (id, account_id, issued_at, expires_at, revoked_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := r.db.Exec(ctx, query,
		session.ID, session.AccountID, session.IssuedAt, session.ExpiresAt, session.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Session, error) {
	const query = `
        SELECT id, account_id, issued_at, expires_at, revoked_at
        FROM sessions WHERE id = $1
    `
	var session model.Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID, &session.AccountID, &session.IssuedAt, &session.ExpiresAt, &session.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session by id: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `
        UPDATE sessions SET revoked_at = $2
        WHERE id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAllByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	const query = `
        UPDATE sessions SET revoked_at = $2
        WHERE account_id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, accountID, at); err != nil {
		return fmt.Errorf("failed to revoke sessions by account: %w", err)
	}
	return nil
}
