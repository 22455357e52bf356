package repository

import (
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkSucceeded flips PENDING -> SUCCEEDED under the same conditional-write
// guard as purchases. tx may be nil.
func (r *PaymentRepository) MarkSucceeded(tx *gorm.DB, id uint, paymentID string, at time.Time) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	result := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, domain.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.PaymentStatusSucceeded,
			"payment_id":   paymentID,
			"completed_at": &at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepository) MarkFailed(id uint) (bool, error) {
	result := r.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, domain.PaymentStatusPending).
		Update("status", domain.PaymentStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
