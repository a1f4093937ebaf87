// Package users persists MemoBoost accounts.
package users

import (
	"context"

	"github.com/agahlya1812/memoboost/internal/server/models"
)

// Repository stores users. Lookups return common.ErrorNotFound when nothing
// matches; Create returns common.ErrorConflict for a taken email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	// Upsert inserts or replaces a user by id; used by the legacy import.
	Upsert(ctx context.Context, user *models.User) error
}
