package cards

import (
	"context"
	"sort"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/memstore"
	"github.com/agahlya1812/memoboost/internal/server/models"
)

type MemoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Card) (*models.Card, error) {
	err := r.store.Write(func(d *memstore.Data) error {
		d.Cards = append(d.Cards, *c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID, id string) (*models.Card, error) {
	var found *models.Card
	_ = r.store.Read(func(d *memstore.Data) error {
		for _, c := range d.Cards {
			if c.UserID == userID && c.ID == id {
				found = &c
				break
			}
		}
		return nil
	})
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Card, error) {
	out := []models.Card{}
	_ = r.store.Read(func(d *memstore.Data) error {
		for _, c := range d.Cards {
			if c.UserID == userID {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// modify applies fn to the owned card id and returns the stored result.
func (r *MemoryRepository) modify(userID, id string, fn func(c *models.Card)) (*models.Card, error) {
	var out models.Card
	err := r.store.Write(func(d *memstore.Data) error {
		for i := range d.Cards {
			if d.Cards[i].UserID == userID && d.Cards[i].ID == id {
				fn(&d.Cards[i])
				out = d.Cards[i]
				return nil
			}
		}
		return common.ErrorNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, c *models.Card) (*models.Card, error) {
	return r.modify(c.UserID, c.ID, func(cur *models.Card) {
		cur.CategoryID = c.CategoryID
		cur.Question = c.Question
		cur.Answer = c.Answer
		cur.MasteryStatus = c.MasteryStatus
		cur.ImageKey = c.ImageKey
		cur.UpdatedAt = c.UpdatedAt
	})
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, userID, id string, status models.MasteryStatus, at time.Time) (*models.Card, error) {
	return r.modify(userID, id, func(cur *models.Card) {
		cur.MasteryStatus = status
		cur.UpdatedAt = at
	})
}

func (r *MemoryRepository) Delete(ctx context.Context, userID, id string) error {
	return r.store.Write(func(d *memstore.Data) error {
		for i := range d.Cards {
			if d.Cards[i].UserID == userID && d.Cards[i].ID == id {
				d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
				return nil
			}
		}
		return common.ErrorNotFound
	})
}

func (r *MemoryRepository) DeleteByCategoryIDs(ctx context.Context, userID string, categoryIDs []string) ([]string, error) {
	drop := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		drop[id] = struct{}{}
	}

	removed := []string{}
	err := r.store.Write(func(d *memstore.Data) error {
		kept := d.Cards[:0]
		for _, c := range d.Cards {
			if _, ok := drop[c.CategoryID]; ok && c.UserID == userID {
				removed = append(removed, c.ID)
				continue
			}
			kept = append(kept, c)
		}
		d.Cards = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, c *models.Card) error {
	return r.store.Write(func(d *memstore.Data) error {
		for i := range d.Cards {
			if d.Cards[i].ID == c.ID {
				d.Cards[i] = *c
				return nil
			}
		}
		d.Cards = append(d.Cards, *c)
		return nil
	})
}
