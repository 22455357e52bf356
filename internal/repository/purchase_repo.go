package repository

import (
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(tx *gorm.DB, p *models.Purchase) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(p).Error
}

func (r *PurchaseRepository) GetByID(id uint) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) GetByOrderID(orderID string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkCompleted flips pending -> completed, guarded by the previous status so
// racing settlers cannot both win. Returns false when another caller already
// moved the purchase to a terminal state.
func (r *PurchaseRepository) MarkCompleted(tx *gorm.DB, id uint, paymentID string, at time.Time) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, domain.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.PurchaseStatusCompleted,
			"payment_id":   paymentID,
			"completed_at": &at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed flips pending -> failed with the same guard.
func (r *PurchaseRepository) MarkFailed(tx *gorm.DB, id uint) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, domain.PurchaseStatusPending).
		Update("status", domain.PurchaseStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountCompletedForResource is the prior-sale count the revenue split keys on.
func (r *PurchaseRepository) CountCompletedForResource(resourceID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Purchase{}).
		Where("resource_id = ? AND status = ?", resourceID, domain.PurchaseStatusCompleted).
		Count(&n).Error
	return n, err
}

func (r *PurchaseRepository) ListByBuyer(buyerID uint, limit, offset int) ([]models.Purchase, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []models.Purchase
	err := r.db.Where("buyer_id = ?", buyerID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *PurchaseRepository) ListCompletedByCreator(creatorID uint, limit int) ([]models.Purchase, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []models.Purchase
	err := r.db.Where("creator_id = ? AND status = ?", creatorID, domain.PurchaseStatusCompleted).
		Order("completed_at DESC").Limit(limit).Find(&list).Error
	return list, err
}
