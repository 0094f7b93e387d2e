package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ivolkov/secrethold/internal/model"
)

// TokenManager is a mock implementation of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) Generate(identity model.SessionIdentity, expiresAt time.Time) (string, error) {
	args := m.Called(identity, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) Parse(token string) (model.SessionIdentity, error) {
	args := m.Called(token)
	return args.Get(0).(model.SessionIdentity), args.Error(1)
}
