package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const columns = `id, user_id, category_id, question, answer, mastery_status, image_key, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Card, error) {
	c := &models.Card{}
	err := s.Scan(&c.ID, &c.UserID, &c.CategoryID, &c.Question, &c.Answer, &c.MasteryStatus, &c.ImageKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Card) (*models.Card, error) {
	query :=
		`INSERT INTO cards (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.CategoryID, c.Question, c.Answer, c.MasteryStatus, c.ImageKey, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Card, error) {
	query :=
		`SELECT ` + columns + ` FROM cards
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

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Card, error) {
	query :=
		`SELECT ` + columns + ` FROM cards
		 WHERE user_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Card{}
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

func (r *PostgresRepository) Update(ctx context.Context, c *models.Card) (*models.Card, error) {
	query :=
		`UPDATE cards
		 SET category_id = $3, question = $4, answer = $5, mastery_status = $6, image_key = $7, updated_at = $8
		 WHERE user_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query,
		c.UserID, c.ID, c.CategoryID, c.Question, c.Answer, c.MasteryStatus, c.ImageKey, c.UpdatedAt)
	if err := affectedOne(res, err); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, userID, id string, status models.MasteryStatus, at time.Time) (*models.Card, error) {
	query :=
		`UPDATE cards SET mastery_status = $3, updated_at = $4
		 WHERE user_id = $1 AND id = $2
		 RETURNING ` + columns

	c, err := scan(r.db.QueryRowContext(ctx, query, userID, id, status, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE user_id = $1 AND id = $2`, userID, id)
	return affectedOne(res, err)
}

func (r *PostgresRepository) DeleteByCategoryIDs(ctx context.Context, userID string, categoryIDs []string) ([]string, error) {
	removed := []string{}
	if len(categoryIDs) == 0 {
		return removed, nil
	}

	query :=
		`DELETE FROM cards
		 WHERE user_id = $1 AND category_id IN (` + dbx.Placeholders(2, len(categoryIDs)) + `)
		 RETURNING id`

	args := make([]any, 0, len(categoryIDs)+1)
	args = append(args, userID)
	for _, id := range categoryIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		removed = append(removed, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return removed, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Card) error {
	query :=
		`INSERT INTO cards (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		 SET user_id = EXCLUDED.user_id, category_id = EXCLUDED.category_id, question = EXCLUDED.question,
		     answer = EXCLUDED.answer, mastery_status = EXCLUDED.mastery_status, updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.CategoryID, c.Question, c.Answer, c.MasteryStatus, c.ImageKey, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
