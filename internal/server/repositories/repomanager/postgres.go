package repomanager

import (
	"context"
	"database/sql"

	"github.com/agahlya1812/memoboost/internal/dbx"
	"github.com/agahlya1812/memoboost/internal/server/migrations"
	"github.com/agahlya1812/memoboost/internal/server/repositories/cards"
	"github.com/agahlya1812/memoboost/internal/server/repositories/categories"
	"github.com/agahlya1812/memoboost/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// sqlRepositories binds the PostgreSQL repositories to a DBTX.
type sqlRepositories struct {
	db dbx.DBTX
}

func (r sqlRepositories) Users() users.Repository {
	return users.NewPostgresRepository(r.db)
}

func (r sqlRepositories) Categories() categories.Repository {
	return categories.NewPostgresRepository(r.db)
}

func (r sqlRepositories) Cards() cards.Repository {
	return cards.NewPostgresRepository(r.db)
}

func (r sqlRepositories) LockOwner(ctx context.Context, userID string) error {
	return dbx.LockKey(ctx, r.db, "owner:"+userID)
}

// PostgresRepositoryManager serves repositories over database/sql with the
// pgx driver; migrations are embedded goose SQL files.
type PostgresRepositoryManager struct {
	sqlRepositories
	db *sql.DB
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{sqlRepositories: sqlRepositories{db: db}, db: db}
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// OpenPostgres connects to dsn with the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewPostgresRepositoryManager(db), nil
}

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, sqlRepositories{db: tx})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
