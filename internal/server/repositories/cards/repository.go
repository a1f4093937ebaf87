// Package cards persists flashcards. Every method is scoped by the owning
// user id inside the query itself.
package cards

import (
	"context"
	"time"

	"github.com/agahlya1812/memoboost/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Card) (*models.Card, error)
	// Get returns common.ErrorNotFound when id does not exist for userID.
	Get(ctx context.Context, userID, id string) (*models.Card, error)
	// ListByUser returns the user's cards, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Card, error)
	// Update writes question, answer, category, status and image key.
	Update(ctx context.Context, c *models.Card) (*models.Card, error)
	UpdateStatus(ctx context.Context, userID, id string, status models.MasteryStatus, at time.Time) (*models.Card, error)
	Delete(ctx context.Context, userID, id string) error
	// DeleteByCategoryIDs removes the user's cards filed under any of
	// categoryIDs and returns the removed card ids.
	DeleteByCategoryIDs(ctx context.Context, userID string, categoryIDs []string) ([]string, error)
	Upsert(ctx context.Context, c *models.Card) error
}
