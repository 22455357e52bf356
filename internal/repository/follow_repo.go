package repository

import (
	"antigravity/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow is conflict-tolerant: following twice is a no-op.
func (r *FollowRepository) Follow(followerID, creatorID uint) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, CreatorID: creatorID}).Error
}

func (r *FollowRepository) Unfollow(followerID, creatorID uint) error {
	return r.db.Where("follower_id = ? AND creator_id = ?", followerID, creatorID).
		Delete(&models.Follow{}).Error
}

func (r *FollowRepository) CountFollowers(creatorID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Follow{}).Where("creator_id = ?", creatorID).Count(&n).Error
	return n, err
}

func (r *FollowRepository) ListFollowers(creatorID uint, limit, offset int) ([]models.Follow, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.Follow
	err := r.db.Preload("Follower").Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
