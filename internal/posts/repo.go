// Package posts stores and serves generated content rows.
package posts

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nevisai/platform/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// SavePost inserts a finished generation.
func (r *Repo) SavePost(ctx context.Context, post *models.GeneratedPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// ListOptions narrows and pages a post listing.
type ListOptions struct {
	BrandID string
	Kind    string
	Limit   int
	Offset  int
}

// ListByUser returns the user's posts, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]models.GeneratedPost, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if opts.BrandID != "" {
		q = q.Where("brand_id = ?", opts.BrandID)
	}
	if opts.Kind != "" {
		q = q.Where("kind = ?", opts.Kind)
	}
	var out []models.GeneratedPost
	err := q.Order("created_at DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&out).Error
	return out, err
}

// Get loads one post by id.
func (r *Repo) Get(ctx context.Context, id string) (*models.GeneratedPost, error) {
	var post models.GeneratedPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post owned by userID. A non-owner gets ErrRecordNotFound,
// same as a missing row, so ids can't be probed.
func (r *Repo) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.GeneratedPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ImportPost inserts a post carrying its own id, skipping ids that already
// exist. Reports whether a row was written. Archive imports rerun safely
// because of this.
func (r *Repo) ImportPost(ctx context.Context, post *models.GeneratedPost) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(post)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// OlderThan pages through posts created before cutoff, for retention sweeps.
func (r *Repo) OlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.GeneratedPost, error) {
	var out []models.GeneratedPost
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeleteByIDs removes a batch of posts regardless of owner. Retention sweeps
// only.
func (r *Repo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.GeneratedPost{})
	return res.RowsAffected, res.Error
}
