// Package session persists the logged-in identity of the CLI so a restart
// does not require logging in again. Values live in the metadata key/value
// table of the local cache.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agahlya1812/memoboost/internal/dbx"
)

// Session is the identity the API client sends with each request.
type Session struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

type Repository interface {
	// Load returns the saved session, or nil when there is none.
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

const (
	keyUserID = "user_id"
	keyEmail  = "email"
	keyName   = "name"
	keyToken  = "token"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func get(ctx context.Context, q dbx.DBTX, key string) (string, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return string(value), nil
}

func set(ctx context.Context, q dbx.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (*Session, error) {
	s := &Session{}
	for key, dst := range map[string]*string{
		keyUserID: &s.UserID,
		keyEmail:  &s.Email,
		keyName:   &s.Name,
		keyToken:  &s.Token,
	} {
		v, err := get(ctx, r.db, key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	if s.UserID == "" {
		return nil, nil
	}
	return s, nil
}

// Save replaces the stored session in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, s *Session) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, keyUserID, s.UserID); err != nil {
			return err
		}
		if err := set(ctx, tx, keyEmail, s.Email); err != nil {
			return err
		}
		if err := set(ctx, tx, keyName, s.Name); err != nil {
			return err
		}
		return set(ctx, tx, keyToken, s.Token)
	})
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?, ?, ?)`,
		keyUserID, keyEmail, keyName, keyToken)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
