package repository

import (
	"fmt"
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(res *models.Resource) error {
	return r.db.Create(res).Error
}

func (r *ResourceRepository) GetByID(id uint) (*models.Resource, error) {
	var res models.Resource
	if err := r.db.First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResourceRepository) GetBySlug(slug string) (*models.Resource, error) {
	var res models.Resource
	if err := r.db.Preload("Author").Where("slug = ?", slug).First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

type ResourceFilter struct {
	Type     string
	PaidOnly bool
	FreeOnly bool
	Limit    int
	Offset   int
}

// ListApproved returns approved resources, newest first.
func (r *ResourceRepository) ListApproved(f ResourceFilter) ([]models.Resource, error) {
	q := r.db.Where("status = ?", domain.ResourceStatusApproved)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.PaidOnly {
		q = q.Where("price_cents > 0")
	}
	if f.FreeOnly {
		q = q.Where("price_cents = 0")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var list []models.Resource
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// ListFeatured returns resources whose featured window covers now.
func (r *ResourceRepository) ListFeatured(now time.Time, limit int) ([]models.Resource, error) {
	if limit <= 0 {
		limit = 10
	}
	var list []models.Resource
	err := r.db.
		Where("status = ? AND featured_until > ?", domain.ResourceStatusApproved, now).
		Order("featured_until DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *ResourceRepository) ListByStatus(status string, limit, offset int) ([]models.Resource, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.Resource
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// SetStatus flips the review status, guarded so only pending resources move.
func (r *ResourceRepository) SetStatus(id uint, toStatus string) (bool, error) {
	result := r.db.Model(&models.Resource{}).
		Where("id = ? AND status = ?", id, domain.ResourceStatusPending).
		Update("status", toStatus)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ResourceRepository) Update(res *models.Resource) error {
	return r.db.Save(res).Error
}

// ExtendFeatured pushes featured_until forward by days, from now if the
// current window has lapsed. tx may be nil. The write is a compare-and-swap
// on the previously read value so concurrent extensions never lose one;
// a conflicting writer makes us re-read and retry.
func (r *ResourceRepository) ExtendFeatured(tx *gorm.DB, id uint, days int, now time.Time) error {
	if tx == nil {
		tx = r.db
	}
	for attempt := 0; attempt < 5; attempt++ {
		var res models.Resource
		if err := tx.First(&res, id).Error; err != nil {
			return err
		}
		base := now
		if res.FeaturedUntil != nil && res.FeaturedUntil.After(now) {
			base = *res.FeaturedUntil
		}
		until := base.Add(time.Duration(days) * 24 * time.Hour)
		q := tx.Model(&models.Resource{}).Where("id = ?", id)
		if res.FeaturedUntil == nil {
			q = q.Where("featured_until IS NULL")
		} else {
			q = q.Where("featured_until = ?", res.FeaturedUntil)
		}
		result := q.Update("featured_until", &until)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
	}
	return fmt.Errorf("featured window contention on resource %d", id)
}
