package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ivolkov/secrethold/internal/model"
)

// AccountStore is a mock implementation of model.AccountStore.
type AccountStore struct {
	mock.Mock
}

func (m *AccountStore) Create(ctx context.Context, account model.Account) (model.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) GetByFederatedSubject(ctx context.Context, provider, providerUserID string) (model.Account, error) {
	args := m.Called(ctx, provider, providerUserID)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) SetSecret(ctx context.Context, id uuid.UUID, value string) (model.Account, error) {
	args := m.Called(ctx, id, value)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) ListWithSecret(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}
