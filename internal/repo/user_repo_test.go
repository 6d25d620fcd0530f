package repo

import (
	"context"
	"testing"

	"github.com/librarium/library/internal/db"
	"github.com/librarium/library/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	users := NewUserRepo(database, log)

	ctx := context.Background()

	require.NoError(t, users.Register(ctx, "test@example.com"))

	registered, err := users.IsRegistered(ctx, "test@example.com")
	require.NoError(t, err)
	assert.True(t, registered)

	registered, err = users.IsRegistered(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestRegisterBlankEmail(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	users := NewUserRepo(database, log)

	ctx := context.Background()

	assert.ErrorIs(t, users.Register(ctx, ""), db.ErrEmailRequired)
	assert.ErrorIs(t, users.Register(ctx, "   "), db.ErrEmailRequired)
}

func TestRegisterDuplicate(t *testing.T) {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")
	users := NewUserRepo(database, log)

	ctx := context.Background()

	require.NoError(t, users.Register(ctx, "test@example.com"))

	err := users.Register(ctx, "test@example.com")
	assert.ErrorIs(t, err, ErrUserAlreadyRegistered)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
