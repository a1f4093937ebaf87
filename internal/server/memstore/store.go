// Package memstore is the in-process dataset behind the memory and file
// storage backends. Writes are copy-on-write: a mutation runs against a clone
// which replaces the live data only once it succeeded (and was persisted).
package memstore

import (
	"sync"

	"github.com/agahlya1812/memoboost/internal/server/models"
)

// Data is the whole dataset. Its JSON shape is the store.json format.
type Data struct {
	Users      []models.User     `json:"users"`
	Categories []models.Category `json:"categories"`
	Cards      []models.Card     `json:"cards"`
}

func (d *Data) Clone() *Data {
	out := &Data{
		Users:      make([]models.User, len(d.Users)),
		Categories: make([]models.Category, len(d.Categories)),
		Cards:      make([]models.Card, len(d.Cards)),
	}
	copy(out.Users, d.Users)
	copy(out.Cards, d.Cards)
	for i, c := range d.Categories {
		if c.ParentID != nil {
			p := *c.ParentID
			c.ParentID = &p
		}
		out.Categories[i] = c
	}
	return out
}

// PersistFunc durably stores a committed dataset.
type PersistFunc func(*Data) error

type Store struct {
	mu      *sync.RWMutex
	data    *Data
	persist PersistFunc
	// inTx is set on the handle given to a transaction body; the parent
	// already holds the write lock and persists on commit.
	inTx bool
}

// New returns a store over data; persist may be nil.
func New(data *Data, persist PersistFunc) *Store {
	if data == nil {
		data = &Data{}
	}
	return &Store{mu: &sync.RWMutex{}, data: data, persist: persist}
}

// Read runs fn against the live data. fn must not retain or mutate it.
func (s *Store) Read(fn func(d *Data) error) error {
	if !s.inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.data)
}

// Write runs fn against a clone and publishes it when fn succeeds and the
// clone was persisted.
func (s *Store) Write(fn func(d *Data) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return s.apply(fn)
}

func (s *Store) apply(fn func(d *Data) error) error {
	next := s.data.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if !s.inTx && s.persist != nil {
		if err := s.persist(next); err != nil {
			return err
		}
	}
	s.data = next
	return nil
}

// Tx runs fn with a transactional handle. All writes done through the handle
// become visible together, or not at all when fn or persistence fails.
func (s *Store) Tx(fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.apply(func(d *Data) error {
		tx := &Store{mu: s.mu, data: d, inTx: true}
		if err := fn(tx); err != nil {
			return err
		}
		*d = *tx.data
		return nil
	})
}

// Snapshot returns a deep copy of the current data.
func (s *Store) Snapshot() *Data {
	var out *Data
	_ = s.Read(func(d *Data) error {
		out = d.Clone()
		return nil
	})
	return out
}
