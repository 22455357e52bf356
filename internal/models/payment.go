package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is a platform-directed payment with no revenue split, currently
// only featured-listing (boost) purchases. Settled through the same webhook
// path as purchases, keyed by provider order id.
type Payment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	ResourceID   uint           `gorm:"not null;index" json:"resource_id"`
	AmountCents  int64          `gorm:"not null" json:"amount_cents"`
	Currency     string         `gorm:"size:3;default:'USD'" json:"currency"`
	Provider     string         `gorm:"size:20;not null" json:"provider"`
	OrderID      string         `gorm:"size:128;uniqueIndex;not null" json:"order_id"`
	PaymentID    string         `gorm:"size:128" json:"payment_id"`
	Purpose      string         `gorm:"size:20;not null" json:"purpose"` // FEATURED
	DurationDays int            `gorm:"not null;default:7" json:"duration_days"`
	Status       string         `gorm:"size:20;not null;index" json:"status"` // PENDING | SUCCEEDED | FAILED
	CompletedAt  *time.Time     `json:"completed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Resource Resource `gorm:"foreignKey:ResourceID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
