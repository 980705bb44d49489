// Package brand manages reusable business profiles that prompts are built
// around.
package brand

import (
	"context"

	"gorm.io/gorm"

	"github.com/nevisai/platform/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, profile *models.BrandProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.BrandProfile, error) {
	var out []models.BrandProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Get loads a profile only when userID owns it; otherwise ErrRecordNotFound.
func (r *Repo) Get(ctx context.Context, id, userID string) (*models.BrandProfile, error) {
	var profile models.BrandProfile
	err := r.db.WithContext(ctx).
		First(&profile, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repo) Update(ctx context.Context, profile *models.BrandProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *Repo) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.BrandProfile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
