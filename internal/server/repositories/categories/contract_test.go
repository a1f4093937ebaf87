package categories

import (
	"context"
	"testing"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func category(id, user, name string, parent *string) *models.Category {
	return &models.Category{ID: id, UserID: user, Name: name, ParentID: parent, Color: models.DefaultColor, CreatedAt: now, UpdatedAt: now}
}

func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	seed := func(t *testing.T, r Repository) {
		t.Helper()
		for _, c := range []*models.Category{
			category("math", "u1", "Math", nil),
			category("algebra", "u1", "Algebra", ptr("math")),
			category("art", "u1", "Art", nil),
			category("other", "u2", "Biology", nil),
		} {
			_, err := r.Create(ctx, c)
			require.NoError(t, err)
		}
	}

	t.Run("get is owner scoped", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		c, err := r.Get(ctx, "u1", "algebra")
		require.NoError(t, err)
		assert.Equal(t, "Algebra", c.Name)
		require.NotNil(t, c.ParentID)
		assert.Equal(t, "math", *c.ParentID)

		_, err = r.Get(ctx, "u2", "algebra")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		list, err := r.ListByUser(ctx, "u1")
		require.NoError(t, err)
		names := []string{}
		for _, c := range list {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"Algebra", "Art", "Math"}, names)

		empty, err := r.ListByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("update", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		upd := category("algebra", "u1", "Linear Algebra", nil)
		upd.Color = models.ColorRed
		_, err := r.Update(ctx, upd)
		require.NoError(t, err)

		got, err := r.Get(ctx, "u1", "algebra")
		require.NoError(t, err)
		assert.Equal(t, "Linear Algebra", got.Name)
		assert.Nil(t, got.ParentID)
		assert.Equal(t, models.ColorRed, got.Color)

		_, err = r.Update(ctx, category("algebra", "u2", "Stolen", nil))
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("delete by ids is owner scoped", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		n, err := r.DeleteByIDs(ctx, "u1", []string{"math", "algebra", "other"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = r.Get(ctx, "u2", "other")
		require.NoError(t, err, "another user's category survives")

		left, err := r.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "art", left[0].ID)

		n, err = r.DeleteByIDs(ctx, "u1", nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("upsert", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Upsert(ctx, category("c1", "u1", "One", nil)))
		require.NoError(t, r.Upsert(ctx, category("c1", "u1", "Uno", nil)))

		list, err := r.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Uno", list[0].Name)
	})
}
