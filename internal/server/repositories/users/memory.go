package users

import (
	"context"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/memstore"
	"github.com/agahlya1812/memoboost/internal/server/models"
)

type MemoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.store.Write(func(d *memstore.Data) error {
		for _, u := range d.Users {
			if u.Email == user.Email || u.ID == user.ID {
				return common.ErrorConflict
			}
		}
		d.Users = append(d.Users, *user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *MemoryRepository) find(match func(u *models.User) bool) (*models.User, error) {
	var found *models.User
	_ = r.store.Read(func(d *memstore.Data) error {
		for i := range d.Users {
			if match(&d.Users[i]) {
				u := d.Users[i]
				found = &u
				return nil
			}
		}
		return nil
	})
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	_ = r.store.Read(func(d *memstore.Data) error {
		n = int64(len(d.Users))
		return nil
	})
	return n, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, user *models.User) error {
	return r.store.Write(func(d *memstore.Data) error {
		for i := range d.Users {
			if d.Users[i].ID == user.ID {
				d.Users[i].Email = user.Email
				d.Users[i].PasswordHash = user.PasswordHash
				d.Users[i].Name = user.Name
				return nil
			}
		}
		d.Users = append(d.Users, *user)
		return nil
	})
}
