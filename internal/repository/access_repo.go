package repository

import (
	"time"

	"antigravity/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessRepository struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// Grant inserts the access row, doing nothing on conflict so a replayed
// settlement or a retried capture never errors. tx may be nil.
func (r *AccessRepository) Grant(tx *gorm.DB, userID, resourceID, purchaseID uint, at time.Time) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserResourceAccess{
		UserID:     userID,
		ResourceID: resourceID,
		PurchaseID: purchaseID,
		GrantedAt:  at,
	}).Error
}

func (r *AccessRepository) Has(userID, resourceID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.UserResourceAccess{}).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Count(&n).Error
	return n > 0, err
}

func (r *AccessRepository) ListByUser(userID uint) ([]models.UserResourceAccess, error) {
	var list []models.UserResourceAccess
	err := r.db.Where("user_id = ?", userID).Order("granted_at DESC").Find(&list).Error
	return list, err
}
