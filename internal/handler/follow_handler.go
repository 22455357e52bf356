package handler

import (
	"net/http"
	"strconv"

	"antigravity/internal/middleware"
	"antigravity/internal/repository"
	"antigravity/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	followRepo *repository.FollowRepository
	userRepo   *repository.UserRepository
	notifSvc   *service.NotificationService
}

func NewFollowHandler(followRepo *repository.FollowRepository, userRepo *repository.UserRepository, notifSvc *service.NotificationService) *FollowHandler {
	return &FollowHandler{followRepo: followRepo, userRepo: userRepo, notifSvc: notifSvc}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	followerID := middleware.GetUserID(c)
	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || creatorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}
	if uint(creatorID) == followerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}
	creator, err := h.userRepo.GetByID(uint(creatorID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
		return
	}
	if err := h.followRepo.Follow(followerID, creator.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "follow failed"})
		return
	}
	if h.notifSvc != nil {
		follower, err := h.userRepo.GetByID(followerID)
		if err == nil {
			_ = h.notifSvc.NotifyNewFollower(creator.ID, follower.ID, follower.Username)
		}
	}
	c.JSON(http.StatusOK, gin.H{"following": true})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	followerID := middleware.GetUserID(c)
	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || creatorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}
	if err := h.followRepo.Unfollow(followerID, uint(creatorID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unfollow failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": false})
}

func (h *FollowHandler) ListFollowers(c *gin.Context) {
	creatorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || creatorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.followRepo.ListFollowers(uint(creatorID), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load followers"})
		return
	}
	count, err := h.followRepo.CountFollowers(uint(creatorID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count followers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": list, "count": count})
}
