package models

import (
	"time"

	"gorm.io/gorm"
)

// Purchase is one buyer's attempt to acquire one resource. Created pending
// with the revenue split frozen at order time; flipped to completed (or
// failed) exactly once by settlement. Rows are never deleted.
type Purchase struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	ResourceID           uint           `gorm:"not null;index" json:"resource_id"`
	BuyerID              uint           `gorm:"not null;index" json:"buyer_id"`
	CreatorID            uint           `gorm:"not null;index" json:"creator_id"`
	AmountTotalCents     int64          `gorm:"not null" json:"amount_total_cents"`
	CreatorEarningsCents int64          `gorm:"not null" json:"creator_earnings_cents"`
	PlatformFeeCents     int64          `gorm:"not null" json:"platform_fee_cents"`
	CreatorPercent       int            `gorm:"not null" json:"creator_percent"`
	Currency             string         `gorm:"size:3;default:'USD'" json:"currency"`
	PaymentMethod        string         `gorm:"size:20;not null" json:"payment_method"`        // razorpay | paypal
	OrderID              string         `gorm:"size:128;uniqueIndex;not null" json:"order_id"` // provider order id
	PaymentID            string         `gorm:"size:128" json:"payment_id"`                    // provider's final payment/capture id
	Status               string         `gorm:"size:20;not null;index" json:"status"`          // pending | completed | failed
	CompletedAt          *time.Time     `json:"completed_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Resource Resource `gorm:"foreignKey:ResourceID" json:"-"`
	Buyer    User     `gorm:"foreignKey:BuyerID" json:"-"`
	Creator  User     `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Purchase) TableName() string {
	return "purchases"
}
