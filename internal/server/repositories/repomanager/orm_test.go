package repomanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

func TestDialector(t *testing.T) {
	assert.IsType(t, &postgres.Dialector{}, Dialector("postgres://u:p@localhost/db"))
	assert.IsType(t, &postgres.Dialector{}, Dialector("postgresql://u:p@localhost/db"))
	assert.IsType(t, &sqlite.Dialector{}, Dialector("memo.db"))
}

func TestOrmManager_WithTx(t *testing.T) {
	m, err := OpenORM(filepath.Join(t.TempDir(), "memo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.RunMigrations(context.Background()))
	require.NoError(t, m.Ping(context.Background()))
	exerciseTx(t, m)
}

func TestOrmManager_LockOwnerOnSQLite(t *testing.T) {
	m, err := OpenORM(filepath.Join(t.TempDir(), "memo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	assert.NoError(t, m.LockOwner(context.Background(), "u1"))
	err = m.WithTx(context.Background(), func(ctx context.Context, r Repositories) error {
		return r.LockOwner(ctx, "u1")
	})
	assert.NoError(t, err)
}
