package context

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivolkov/secrethold/internal/model"
)

func TestManager_SetGetIdentity(t *testing.T) {
	m := NewManager()
	identity := model.SessionIdentity{
		AccountID: uuid.New(),
		SessionID: uuid.New(),
		Username:  "alice",
	}

	ctx := m.SetIdentity(context.Background(), identity)

	got, ok := m.GetIdentity(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, got)
}

func TestManager_GetIdentity_Anonymous(t *testing.T) {
	m := NewManager()

	_, ok := m.GetIdentity(context.Background())
	assert.False(t, ok)
}
