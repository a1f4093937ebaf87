package users

import (
	"context"
	"testing"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises behaviour every Repository implementation shares.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Create(ctx, &models.User{ID: "u1", Email: "ann@example.com", PasswordHash: "h", Name: "Ann", CreatedAt: now})
		require.NoError(t, err)

		byEmail, err := r.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", byEmail.ID)
		assert.Equal(t, "h", byEmail.PasswordHash)

		byID, err := r.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ann", byID.Name)

		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("duplicate email", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Create(ctx, &models.User{ID: "u1", Email: "ann@example.com", PasswordHash: "h", CreatedAt: now})
		require.NoError(t, err)

		_, err = r.Create(ctx, &models.User{ID: "u2", Email: "ann@example.com", PasswordHash: "h", CreatedAt: now})
		assert.ErrorIs(t, err, common.ErrorConflict)
	})

	t.Run("not found", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		_, err = r.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("upsert", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Upsert(ctx, &models.User{ID: "u1", Email: "a@example.com", PasswordHash: "h1", CreatedAt: now}))
		require.NoError(t, r.Upsert(ctx, &models.User{ID: "u1", Email: "b@example.com", PasswordHash: "h2", CreatedAt: now}))

		u, err := r.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "b@example.com", u.Email)
		assert.Equal(t, "h2", u.PasswordHash)

		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
