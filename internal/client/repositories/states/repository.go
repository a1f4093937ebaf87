// Package states caches the last known server state of each user in the
// local SQLite database, so the CLI can show data while the server is
// unreachable.
package states

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/dbx"
)

type Repository interface {
	// Get returns the cached state of userID, or nil when nothing is cached.
	Get(ctx context.Context, userID string) (*models.State, error)
	Save(ctx context.Context, userID string, s *models.State) error
	Delete(ctx context.Context, userID string) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.State, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM states WHERE user_id = ?`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state[%s]: %w", userID, err)
	}

	var s models.State
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode state[%s]: %w", userID, err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, userID string, s *models.State) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode state[%s]: %w", userID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO states (user_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, userID, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save state[%s]: %w", userID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM states WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete state[%s]: %w", userID, err)
	}
	return nil
}
