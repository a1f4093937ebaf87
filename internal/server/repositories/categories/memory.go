package categories

import (
	"context"
	"sort"

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

func clone(c models.Category) models.Category {
	if c.ParentID != nil {
		p := *c.ParentID
		c.ParentID = &p
	}
	return c
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	err := r.store.Write(func(d *memstore.Data) error {
		d.Categories = append(d.Categories, clone(*c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID, id string) (*models.Category, error) {
	var found *models.Category
	_ = r.store.Read(func(d *memstore.Data) error {
		for _, c := range d.Categories {
			if c.UserID == userID && c.ID == id {
				cc := clone(c)
				found = &cc
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

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	out := []models.Category{}
	_ = r.store.Read(func(d *memstore.Data) error {
		for _, c := range d.Categories {
			if c.UserID == userID {
				out = append(out, clone(c))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	err := r.store.Write(func(d *memstore.Data) error {
		for i := range d.Categories {
			cur := &d.Categories[i]
			if cur.UserID == c.UserID && cur.ID == c.ID {
				upd := clone(*c)
				cur.Name = upd.Name
				cur.ParentID = upd.ParentID
				cur.Color = upd.Color
				cur.UpdatedAt = upd.UpdatedAt
				return nil
			}
		}
		return common.ErrorNotFound
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *MemoryRepository) DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	var n int64
	err := r.store.Write(func(d *memstore.Data) error {
		kept := d.Categories[:0]
		for _, c := range d.Categories {
			if _, ok := drop[c.ID]; ok && c.UserID == userID {
				n++
				continue
			}
			kept = append(kept, c)
		}
		d.Categories = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, c *models.Category) error {
	return r.store.Write(func(d *memstore.Data) error {
		for i := range d.Categories {
			if d.Categories[i].ID == c.ID {
				d.Categories[i] = clone(*c)
				return nil
			}
		}
		d.Categories = append(d.Categories, clone(*c))
		return nil
	})
}
