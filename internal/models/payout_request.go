package models

import (
	"time"

	"gorm.io/gorm"
)

type PayoutRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatorID       uint           `gorm:"not null;index" json:"creator_id"`
	AmountCents     int64          `gorm:"not null" json:"amount_cents"`
	Currency        string         `gorm:"size:3;default:'USD'" json:"currency"`
	PaymentMethod   string         `gorm:"size:20;not null" json:"payment_method"`
	AccountDetails  string         `gorm:"size:512" json:"account_details"` // UPI id / PayPal email
	Status          string         `gorm:"size:20;not null;index" json:"status"` // pending | approved | rejected | completed
	RejectionReason string         `gorm:"size:512" json:"rejection_reason,omitempty"`
	RequestedAt     time.Time      `gorm:"not null" json:"requested_at"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (PayoutRequest) TableName() string {
	return "payout_requests"
}
