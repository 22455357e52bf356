package repository

import (
	"errors"
	"time"

	"antigravity/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EarningsRepository struct {
	db *gorm.DB
}

func NewEarningsRepository(db *gorm.DB) *EarningsRepository {
	return &EarningsRepository{db: db}
}

func (r *EarningsRepository) GetByUserID(userID uint) (*models.CreatorEarnings, error) {
	var e models.CreatorEarnings
	if err := r.db.Where("user_id = ?", userID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// CreditSale applies one completed sale additively: insert the first row for
// the creator, otherwise add to the running totals. The increment is done in
// SQL so concurrent settlements for the same creator never overwrite each
// other. tx may be nil.
func (r *EarningsRepository) CreditSale(tx *gorm.DB, creatorID uint, amountCents int64, at time.Time) error {
	if tx == nil {
		tx = r.db
	}
	row := &models.CreatorEarnings{
		UserID:             creatorID,
		TotalEarningsCents: amountCents,
		SalesCount:         1,
		LastSaleAt:         &at,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_earnings_cents": gorm.Expr("total_earnings_cents + ?", amountCents),
			"sales_count":          gorm.Expr("sales_count + 1"),
			"last_sale_at":         &at,
		}),
	}).Create(row).Error
}
