// Package categories persists the folder forest. Every method is scoped by
// the owning user id inside the query itself.
package categories

import (
	"context"

	"github.com/agahlya1812/memoboost/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	// Get returns common.ErrorNotFound when id does not exist for userID.
	Get(ctx context.Context, userID, id string) (*models.Category, error)
	// ListByUser returns the user's categories ordered by name.
	ListByUser(ctx context.Context, userID string) ([]models.Category, error)
	// Update writes name, parent and color of an owned category.
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	// DeleteByIDs removes the owned categories among ids and reports how many went.
	DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error)
	Upsert(ctx context.Context, c *models.Category) error
}
