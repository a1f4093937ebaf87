// Package repomanager wires the entity repositories of one storage backend
// and exposes transactions, migrations and health checks over them.
package repomanager

import (
	"context"

	"github.com/agahlya1812/memoboost/internal/server/repositories/cards"
	"github.com/agahlya1812/memoboost/internal/server/repositories/categories"
	"github.com/agahlya1812/memoboost/internal/server/repositories/users"
)

// Repositories is a consistent set of repositories bound to one handle:
// either the backend itself or an open transaction.
type Repositories interface {
	Users() users.Repository
	Categories() categories.Repository
	Cards() cards.Repository
	// LockOwner serializes transactions that touch userID's folder tree.
	// Called first inside WithTx; the lock is released when it ends.
	LockOwner(ctx context.Context, userID string) error
}

type RepositoryManager interface {
	Repositories
	// WithTx runs fn inside one transaction; fn's writes are committed
	// together when it returns nil and discarded otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
