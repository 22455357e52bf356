package models

import (
	"time"
)

// UserResourceAccess grants a buyer permanent access to a paid resource.
// At most one row per (user, resource); inserts use do-nothing-on-conflict.
type UserResourceAccess struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_resource" json:"user_id"`
	ResourceID uint      `gorm:"not null;uniqueIndex:idx_user_resource" json:"resource_id"`
	PurchaseID uint      `gorm:"not null" json:"purchase_id"`
	GrantedAt  time.Time `gorm:"not null" json:"granted_at"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Resource Resource `gorm:"foreignKey:ResourceID" json:"-"`
}

func (UserResourceAccess) TableName() string {
	return "user_resource_access"
}
