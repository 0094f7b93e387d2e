package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ivolkov/secrethold/internal/model"
)

// OAuthStateStore is a mock implementation of model.OAuthStateStore.
type OAuthStateStore struct {
	mock.Mock
}

func (m *OAuthStateStore) Create(ctx context.Context, state model.OAuthState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *OAuthStateStore) GetByState(ctx context.Context, state string) (model.OAuthState, error) {
	args := m.Called(ctx, state)
	return args.Get(0).(model.OAuthState), args.Error(1)
}

func (m *OAuthStateStore) Consume(ctx context.Context, state string) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}
