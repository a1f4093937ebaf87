package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/dbx"
	"github.com/agahlya1812/memoboost/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, user_id, name, parent_id, color, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Category, error) {
	c := &models.Category{}
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.ParentID, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query :=
		`INSERT INTO categories (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.ParentID, c.Color, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Category, error) {
	query :=
		`SELECT ` + columns + ` FROM categories
		 WHERE user_id = $1 AND id = $2`

	c, err := scan(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	query :=
		`SELECT ` + columns + ` FROM categories
		 WHERE user_id = $1
		 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	query :=
		`UPDATE categories SET name = $3, parent_id = $4, color = $5, updated_at = $6
		 WHERE user_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, c.UserID, c.ID, c.Name, c.ParentID, c.Color, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (r *PostgresRepository) DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM categories WHERE user_id = $1 AND id IN (` + dbx.Placeholders(2, len(ids)) + `)`

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Category) error {
	query :=
		`INSERT INTO categories (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET user_id = EXCLUDED.user_id, name = EXCLUDED.name, parent_id = EXCLUDED.parent_id,
		     color = EXCLUDED.color, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.ParentID, c.Color, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
