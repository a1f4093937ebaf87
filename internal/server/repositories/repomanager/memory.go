package repomanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agahlya1812/memoboost/internal/filex"
	"github.com/agahlya1812/memoboost/internal/server/memstore"
	"github.com/agahlya1812/memoboost/internal/server/repositories/cards"
	"github.com/agahlya1812/memoboost/internal/server/repositories/categories"
	"github.com/agahlya1812/memoboost/internal/server/repositories/users"
)

type memoryRepositories struct {
	store *memstore.Store
}

func (r memoryRepositories) Users() users.Repository {
	return users.NewMemoryRepository(r.store)
}

func (r memoryRepositories) Categories() categories.Repository {
	return categories.NewMemoryRepository(r.store)
}

func (r memoryRepositories) Cards() cards.Repository {
	return cards.NewMemoryRepository(r.store)
}

// LockOwner is a no-op: memstore transactions already hold the store mutex.
func (r memoryRepositories) LockOwner(ctx context.Context, userID string) error {
	return nil
}

// MemoryRepositoryManager keeps everything in process, optionally mirrored
// to a JSON file after every committed write.
type MemoryRepositoryManager struct {
	memoryRepositories
	store *memstore.Store
	path  string
}

func NewMemoryRepositoryManager(store *memstore.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{memoryRepositories: memoryRepositories{store: store}, store: store}
}

// OpenFile loads the JSON store at path (empty when missing) and persists
// every committed write back to it.
func OpenFile(path string) (*MemoryRepositoryManager, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	data, err := memstore.Load(path)
	if err != nil {
		return nil, err
	}
	m := NewMemoryRepositoryManager(memstore.New(data, memstore.FilePersister(path)))
	m.path = path
	return m, nil
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return m.store.Tx(func(tx *memstore.Store) error {
		return fn(ctx, memoryRepositories{store: tx})
	})
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

// Ping checks that the store directory is still reachable for file stores.
func (m *MemoryRepositoryManager) Ping(ctx context.Context) error {
	if m.path == "" {
		return nil
	}
	dir := filepath.Dir(m.path)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
