package auth

import (
	"context"
	"testing"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, models.User{Email: " Minh@Example.com ", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "minh@example.com", created.Email)

	_, err = repo.Create(ctx, models.User{Email: "minh@example.com"})
	assert.Equal(t, custom_error.CodeConflict, custom_error.CodeOf(err))

	found, err := repo.FindByEmail(ctx, "MINH@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, repo.UpdatePassword(ctx, created.ID, "hash"))
	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = repo.FindByID(ctx, 99)
	assert.True(t, isNotFound(err))
	assert.True(t, isNotFound(repo.UpdatePassword(ctx, 99, "x")))
}
