package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/middleware"
	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResourceHandler struct {
	resourceRepo *repository.ResourceRepository
	accessRepo   *repository.AccessRepository
	feedSvc      *service.FeedService
}

func NewResourceHandler(resourceRepo *repository.ResourceRepository, accessRepo *repository.AccessRepository, feedSvc *service.FeedService) *ResourceHandler {
	return &ResourceHandler{resourceRepo: resourceRepo, accessRepo: accessRepo, feedSvc: feedSvc}
}

// List returns the directory feed with featured resources interleaved.
func (h *ResourceHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := repository.ResourceFilter{
		Type:     c.Query("type"),
		PaidOnly: c.Query("pricing") == "paid",
		FreeOnly: c.Query("pricing") == "free",
		Limit:    limit,
		Offset:   offset,
	}
	items, err := h.feedSvc.Build(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// Get returns one resource by slug. The paid body is included only for the
// author and buyers with a completed purchase.
func (h *ResourceHandler) Get(c *gin.Context) {
	res, err := h.resourceRepo.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	userID := middleware.GetUserID(c)
	canRead := res.PriceCents == 0 || (userID != 0 && userID == res.AuthorID)
	if !canRead && userID != 0 {
		if has, err := h.accessRepo.Has(userID, res.ID); err == nil && has {
			canRead = true
		}
	}
	resp := gin.H{
		"resource":   res,
		"featured":   res.IsFeatured(time.Now()),
		"has_access": canRead,
	}
	if canRead {
		resp["content"] = res.Content
	}
	c.JSON(http.StatusOK, resp)
}

// Create submits a new resource for review. Creators only; listings go live
// after admin approval.
func (h *ResourceHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Type          string `json:"type" binding:"required,oneof=PROMPT MCP_SERVER RULE"`
		Title         string `json:"title" binding:"required,min=3,max=255"`
		Description   string `json:"description" binding:"required"`
		Content       string `json:"content" binding:"required"`
		PriceCents    int64  `json:"price_cents" binding:"min=0"`
		Currency      string `json:"currency"`
		ScreenshotURL string `json:"screenshot_url"`
		ThumbnailURL  string `json:"thumbnail_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	res := &models.Resource{
		AuthorID:      userID,
		Type:          req.Type,
		Title:         req.Title,
		Slug:          makeSlug(req.Title),
		Description:   req.Description,
		Content:       req.Content,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		Status:        domain.ResourceStatusPending,
		ScreenshotURL: req.ScreenshotURL,
		ThumbnailURL:  req.ThumbnailURL,
	}
	if err := h.resourceRepo.Create(res); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resource"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"resource": res})
}

// makeSlug builds a URL-safe slug with a short random suffix so titles
// never collide on the unique index.
func makeSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 200 {
		slug = slug[:200]
	}
	return fmt.Sprintf("%s-%s", slug, strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
}
