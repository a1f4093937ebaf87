package cards

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func card(id, user, category string, minute int) *models.Card {
	at := base.Add(time.Duration(minute) * time.Minute)
	return &models.Card{
		ID: id, UserID: user, CategoryID: category,
		Question: "q-" + id, Answer: "a-" + id,
		MasteryStatus: models.StatusUnknown, CreatedAt: at, UpdatedAt: at,
	}
}

func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	seed := func(t *testing.T, r Repository) {
		t.Helper()
		for _, c := range []*models.Card{
			card("k1", "u1", "math", 1),
			card("k2", "u1", "algebra", 2),
			card("k3", "u1", "art", 3),
			card("k4", "u2", "math", 4),
		} {
			_, err := r.Create(ctx, c)
			require.NoError(t, err)
		}
	}

	t.Run("get and list", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		c, err := r.Get(ctx, "u1", "k2")
		require.NoError(t, err)
		assert.Equal(t, "q-k2", c.Question)

		_, err = r.Get(ctx, "u2", "k2")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		list, err := r.ListByUser(ctx, "u1")
		require.NoError(t, err)
		ids := []string{}
		for _, c := range list {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"k3", "k2", "k1"}, ids, "newest first")
	})

	t.Run("update", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		upd := card("k1", "u1", "art", 1)
		upd.Question = "new question"
		upd.MasteryStatus = models.StatusReview
		upd.ImageKey = "users/u1/cards/k1/img"
		_, err := r.Update(ctx, upd)
		require.NoError(t, err)

		got, err := r.Get(ctx, "u1", "k1")
		require.NoError(t, err)
		assert.Equal(t, "new question", got.Question)
		assert.Equal(t, "art", got.CategoryID)
		assert.Equal(t, models.StatusReview, got.MasteryStatus)
		assert.Equal(t, "users/u1/cards/k1/img", got.ImageKey)

		_, err = r.Update(ctx, card("k1", "u2", "math", 1))
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("update status keeps content", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		got, err := r.UpdateStatus(ctx, "u1", "k2", models.StatusKnown, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, models.StatusKnown, got.MasteryStatus)
		assert.Equal(t, "q-k2", got.Question)
		assert.Equal(t, "a-k2", got.Answer)
		assert.Equal(t, "algebra", got.CategoryID)

		_, err = r.UpdateStatus(ctx, "u2", "k2", models.StatusKnown, base)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		assert.ErrorIs(t, r.Delete(ctx, "u2", "k1"), common.ErrorNotFound)
		require.NoError(t, r.Delete(ctx, "u1", "k1"))
		assert.ErrorIs(t, r.Delete(ctx, "u1", "k1"), common.ErrorNotFound)
	})

	t.Run("delete by category ids", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r)

		removed, err := r.DeleteByCategoryIDs(ctx, "u1", []string{"math", "algebra"})
		require.NoError(t, err)
		sort.Strings(removed)
		assert.Equal(t, []string{"k1", "k2"}, removed)

		_, err = r.Get(ctx, "u2", "k4")
		require.NoError(t, err, "other owner's card in a same-id folder survives")
		_, err = r.Get(ctx, "u1", "k3")
		require.NoError(t, err)

		removed, err = r.DeleteByCategoryIDs(ctx, "u1", nil)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})

	t.Run("upsert", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Upsert(ctx, card("k1", "u1", "math", 1)))
		c := card("k1", "u1", "math", 1)
		c.Answer = "changed"
		require.NoError(t, r.Upsert(ctx, c))

		got, err := r.Get(ctx, "u1", "k1")
		require.NoError(t, err)
		assert.Equal(t, "changed", got.Answer)
	})
}
