package repository

import (
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"

	"gorm.io/gorm"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) Create(p *models.PayoutRequest) error {
	return r.db.Create(p).Error
}

func (r *PayoutRepository) GetByID(id uint) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) ListByCreator(creatorID uint) ([]models.PayoutRequest, error) {
	var list []models.PayoutRequest
	err := r.db.Where("creator_id = ?", creatorID).Order("requested_at DESC").Find(&list).Error
	return list, err
}

func (r *PayoutRepository) ListByStatus(status string, limit, offset int) ([]models.PayoutRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.PayoutRequest
	err := r.db.Where("status = ?", status).
		Order("requested_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// Decide flips pending -> approved|rejected exactly once; the guard on the
// previous status makes a second admin decision a no-op. Returns false when
// the request was already decided.
func (r *PayoutRepository) Decide(id uint, toStatus, reason string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":       toStatus,
		"processed_at": &at,
	}
	if reason != "" {
		updates["rejection_reason"] = reason
	}
	result := r.db.Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, domain.PayoutStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetCompleted flips approved -> completed once the money actually moved.
func (r *PayoutRepository) SetCompleted(id uint) (bool, error) {
	result := r.db.Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, domain.PayoutStatusApproved).
		Update("status", domain.PayoutStatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SumPaidOrApproved is the amount already spoken for: approved and completed
// payouts both reduce the balance available to new requests.
func (r *PayoutRepository) SumPaidOrApproved(creatorID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.PayoutRequest{}).
		Where("creator_id = ? AND status IN ?", creatorID,
			[]string{domain.PayoutStatusApproved, domain.PayoutStatusCompleted}).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&total).Error
	return total, err
}
