package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *GormRepository) Get(ctx context.Context, userID, id string) (*models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	out := []models.Category{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *GormRepository) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	res := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ? AND id = ?", c.UserID, c.ID).
		Updates(map[string]any{
			"name":       c.Name,
			"parent_id":  c.ParentID,
			"color":      c.Color,
			"updated_at": c.UpdatedAt,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (r *GormRepository) DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Category{})
	if res.Error != nil {
		return 0, fmt.Errorf("db error: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) Upsert(ctx context.Context, c *models.Category) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "name", "parent_id", "color", "updated_at"}),
	}).Create(c).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
