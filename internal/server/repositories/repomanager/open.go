package repomanager

import (
	"context"
	"fmt"

	"github.com/agahlya1812/memoboost/internal/server/memstore"
)

// Backend names accepted by Open.
const (
	BackendPostgres = "postgres"
	BackendORM      = "orm"
	BackendMemory   = "memory"
	BackendFile     = "file"
)

// Open builds the manager for backend and applies its migrations.
func Open(ctx context.Context, backend, dsn, storePath string) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch backend {
	case BackendPostgres:
		m, err = OpenPostgres(ctx, dsn)
	case BackendORM:
		m, err = OpenORM(dsn)
	case BackendMemory:
		m = NewMemoryRepositoryManager(memstore.New(nil, nil))
	case BackendFile:
		m, err = OpenFile(storePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", backend, err)
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migrate %s storage: %w", backend, err)
	}
	return m, nil
}
