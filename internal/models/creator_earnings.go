package models

import (
	"time"
)

// CreatorEarnings is a materialized aggregate: total_earnings_cents equals the
// sum of completed purchase earnings for the creator. Mutated additively only;
// payouts are tracked separately and never decrement this row.
type CreatorEarnings struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalEarningsCents int64      `gorm:"not null;default:0" json:"total_earnings_cents"`
	SalesCount         int64      `gorm:"not null;default:0" json:"sales_count"`
	LastSaleAt         *time.Time `json:"last_sale_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreatorEarnings) TableName() string {
	return "creator_earnings"
}
