// Package repositories opens the CLI's local SQLite cache and hands out
// the repositories stored in it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agahlya1812/memoboost/internal/client/migrations"
	"github.com/agahlya1812/memoboost/internal/client/repositories/session"
	"github.com/agahlya1812/memoboost/internal/client/repositories/states"
	"github.com/agahlya1812/memoboost/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB      *sql.DB
	Session session.Repository
	States  states.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating when needed) the cache at dsn and applies
// the migrations. ":memory:" gives a throwaway cache.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if dsn != ":memory:" {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// ":memory:" databases live and die with their connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		DB:      db,
		Session: session.NewSQLiteRepository(db),
		States:  states.NewSQLiteRepository(db),
	}, nil
}
