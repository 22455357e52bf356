package models

import (
	"time"
)

type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_creator" json:"follower_id"`
	CreatorID  uint      `gorm:"not null;uniqueIndex:idx_follower_creator;index" json:"creator_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Creator  User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}
