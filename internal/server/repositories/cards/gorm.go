package cards

import (
	"context"
	"errors"
	"fmt"
	"time"

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

func (r *GormRepository) Create(ctx context.Context, c *models.Card) (*models.Card, error) {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *GormRepository) Get(ctx context.Context, userID, id string) (*models.Card, error) {
	var c models.Card
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]models.Card, error) {
	out := []models.Card{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *GormRepository) Update(ctx context.Context, c *models.Card) (*models.Card, error) {
	res := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("user_id = ? AND id = ?", c.UserID, c.ID).
		Updates(map[string]any{
			"category_id":    c.CategoryID,
			"question":       c.Question,
			"answer":         c.Answer,
			"mastery_status": c.MasteryStatus,
			"image_key":      c.ImageKey,
			"updated_at":     c.UpdatedAt,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, userID, id string, status models.MasteryStatus, at time.Time) (*models.Card, error) {
	res := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]any{"mastery_status": status, "updated_at": at})
	if res.Error != nil {
		return nil, fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, common.ErrorNotFound
	}
	return r.Get(ctx, userID, id)
}

func (r *GormRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Card{})
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *GormRepository) DeleteByCategoryIDs(ctx context.Context, userID string, categoryIDs []string) ([]string, error) {
	removed := []string{}
	if len(categoryIDs) == 0 {
		return removed, nil
	}

	scope := r.db.WithContext(ctx).Where("user_id = ? AND category_id IN ?", userID, categoryIDs)
	if err := scope.Model(&models.Card{}).Pluck("id", &removed).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(removed) == 0 {
		return removed, nil
	}
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, removed).Delete(&models.Card{}).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return removed, nil
}

func (r *GormRepository) Upsert(ctx context.Context, c *models.Card) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "category_id", "question", "answer", "mastery_status", "updated_at"}),
	}).Create(c).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
