package models

import (
	"time"

	"gorm.io/gorm"
)

type Resource struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AuthorID      uint           `gorm:"index" json:"author_id"` // 0 = unclaimed import, not purchasable
	Type          string         `gorm:"size:20;not null;index" json:"type"` // PROMPT | MCP_SERVER | RULE
	Title         string         `gorm:"size:255;not null" json:"title"`
	Slug          string         `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	Content       string         `gorm:"type:text" json:"-"` // paid body, returned only to buyers/author
	PriceCents    int64          `gorm:"not null;default:0" json:"price_cents"` // 0 = free
	Currency      string         `gorm:"size:3;default:'USD'" json:"currency"`
	Status        string         `gorm:"size:20;not null;index;default:'PENDING'" json:"status"`
	FeaturedUntil *time.Time     `gorm:"index" json:"featured_until"`
	ScreenshotURL string         `gorm:"size:512" json:"screenshot_url"`
	ThumbnailURL  string         `gorm:"size:512" json:"thumbnail_url"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Resource) TableName() string {
	return "resources"
}

func (r *Resource) IsFeatured(now time.Time) bool {
	return r.FeaturedUntil != nil && r.FeaturedUntil.After(now)
}
