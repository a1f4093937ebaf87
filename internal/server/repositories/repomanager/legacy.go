package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/agahlya1812/memoboost/internal/server/memstore"
	"github.com/agahlya1812/memoboost/internal/server/models"
)

// ImportLegacyStore copies users, categories and cards from a store.json
// file into m, in one transaction, when m has no users yet. It reports
// whether anything was imported. A missing file imports nothing. Folders
// whose parent is missing move to the root; cards without a folder are dropped.
func ImportLegacyStore(ctx context.Context, m RepositoryManager, path string) (bool, error) {
	if path == "" {
		return false, nil
	}

	data, err := memstore.Load(path)
	if err != nil {
		return false, err
	}
	if len(data.Users) == 0 && len(data.Categories) == 0 && len(data.Cards) == 0 {
		return false, nil
	}

	n, err := m.Users().Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	stamp := func(t time.Time) time.Time {
		if t.IsZero() {
			return now
		}
		return t
	}

	known := make(map[string]bool, len(data.Categories))
	for _, c := range data.Categories {
		known[c.ID] = true
	}

	err = m.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		for _, u := range data.Users {
			u.Email = models.NormalizeEmail(u.Email)
			u.CreatedAt = stamp(u.CreatedAt)
			if err := r.Users().Upsert(ctx, &u); err != nil {
				return fmt.Errorf("user %s: %w", u.ID, err)
			}
		}
		for _, c := range data.Categories {
			c.ParentID = models.NormalizeParentID(c.ParentID)
			if c.ParentID != nil && !known[*c.ParentID] {
				c.ParentID = nil
			}
			c.Color = models.NormalizeColor(string(c.Color), models.DefaultColor)
			c.CreatedAt = stamp(c.CreatedAt)
			c.UpdatedAt = stamp(c.UpdatedAt)
			if err := r.Categories().Upsert(ctx, &c); err != nil {
				return fmt.Errorf("category %s: %w", c.ID, err)
			}
		}
		for _, c := range data.Cards {
			if !known[c.CategoryID] {
				continue
			}
			c.MasteryStatus = models.NormalizeStatus(string(c.MasteryStatus), models.StatusUnknown)
			c.CreatedAt = stamp(c.CreatedAt)
			c.UpdatedAt = stamp(c.UpdatedAt)
			if err := r.Cards().Upsert(ctx, &c); err != nil {
				return fmt.Errorf("card %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("import %s: %w", path, err)
	}
	return true, nil
}
