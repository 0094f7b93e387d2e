package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ivolkov/secrethold/internal/model"
)

var _ model.OAuthStateStore = (*OAuthStateRepository)(nil)

type OAuthStateRepository struct {
	db *Connection
}

func NewOAuthStateRepository(db *Connection) *OAuthStateRepository {
	return &OAuthStateRepository{
		db: db,
	}
}

func (r *OAuthStateRepository) Create(ctx context.Context, state model.OAuthState) error {
	query := `INSERT INTO oauth_states (state, provider, code_verifier, expires_at, consumed)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		state.State, state.Provider, state.CodeVerifier, state.ExpiresAt, state.Consumed,
	)
	if err != nil {
		return fmt.Errorf("failed to create oauth state: %w", err)
	}

	return nil
}

func (r *OAuthStateRepository) GetByState(ctx context.Context, state string) (model.OAuthState, error) {
	var pending model.OAuthState
	query := `SELECT state, provider, code_verifier, expires_at, consumed
			  FROM oauth_states WHERE state = $1`

	err := r.db.QueryRow(ctx, query, state).Scan(
		&pending.State, &pending.Provider, &pending.CodeVerifier,
		&pending.ExpiresAt, &pending.Consumed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OAuthState{}, model.ErrNotFound
		}
		return model.OAuthState{}, fmt.Errorf("failed to get oauth state: %w", err)
	}

	return pending, nil
}

func (r *OAuthStateRepository) Consume(ctx context.Context, state string) error {
	query := `UPDATE oauth_states SET consumed = TRUE WHERE state = $1`

	_, err := r.db.Exec(ctx, query, state)
	if err != nil {
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}

	return nil
}
