package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/agahlya1812/memoboost/internal/server/repositories/cards"
	"github.com/agahlya1812/memoboost/internal/server/repositories/categories"
	"github.com/agahlya1812/memoboost/internal/server/repositories/users"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormRepositories struct {
	db *gorm.DB
}

func (r gormRepositories) Users() users.Repository {
	return users.NewGormRepository(r.db)
}

func (r gormRepositories) Categories() categories.Repository {
	return categories.NewGormRepository(r.db)
}

func (r gormRepositories) Cards() cards.Repository {
	return cards.NewGormRepository(r.db)
}

// LockOwner takes an advisory lock on PostgreSQL. SQLite allows a single
// writer per database, so there is nothing to take.
func (r gormRepositories) LockOwner(ctx context.Context, userID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "owner:"+userID).Error
}

// OrmRepositoryManager serves repositories through gorm, on PostgreSQL or
// SQLite depending on the DSN.
type OrmRepositoryManager struct {
	gormRepositories
	db *gorm.DB
}

func NewOrmRepositoryManager(db *gorm.DB) *OrmRepositoryManager {
	return &OrmRepositoryManager{gormRepositories: gormRepositories{db: db}, db: db}
}

// Dialector picks the gorm driver for dsn: postgres:// and postgresql://
// URLs go to PostgreSQL, anything else is treated as a SQLite path.
func Dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// OpenORM opens dsn through gorm with SQL logging limited to warnings.
func OpenORM(dsn string) (*OrmRepositoryManager, error) {
	db, err := gorm.Open(Dialector(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return NewOrmRepositoryManager(db), nil
}

func (m *OrmRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, gormRepositories{db: tx})
	})
}

// treeForeignKeys mirror the SQL migration's constraints for the ORM schema.
var treeForeignKeys = []struct {
	model     any
	name, ddl string
}{
	{&models.Category{}, "categories_parent_fk",
		`ALTER TABLE categories ADD CONSTRAINT categories_parent_fk
		 FOREIGN KEY (parent_id) REFERENCES categories (id) DEFERRABLE INITIALLY DEFERRED`},
	{&models.Card{}, "cards_category_fk",
		`ALTER TABLE cards ADD CONSTRAINT cards_category_fk
		 FOREIGN KEY (category_id) REFERENCES categories (id) DEFERRABLE INITIALLY DEFERRED`},
}

// RunMigrations auto-migrates the models. On PostgreSQL it also adds the
// folder foreign keys; SQLite cannot add constraints to existing tables.
func (m *OrmRepositoryManager) RunMigrations(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Card{}); err != nil {
		return err
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, fk := range treeForeignKeys {
		if db.Migrator().HasConstraint(fk.model, fk.name) {
			continue
		}
		if err := db.Exec(fk.ddl).Error; err != nil {
			return fmt.Errorf("add %s: %w", fk.name, err)
		}
	}
	return nil
}

func (m *OrmRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *OrmRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
