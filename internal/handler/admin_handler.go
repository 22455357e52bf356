package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"antigravity/internal/domain"
	"antigravity/internal/middleware"
	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	resourceRepo *repository.ResourceRepository
	auditRepo    *repository.AuditLogRepository
	notifSvc     *service.NotificationService
}

func NewAdminHandler(resourceRepo *repository.ResourceRepository, auditRepo *repository.AuditLogRepository, notifSvc *service.NotificationService) *AdminHandler {
	return &AdminHandler{resourceRepo: resourceRepo, auditRepo: auditRepo, notifSvc: notifSvc}
}

// ListPendingResources returns resources awaiting review, oldest first.
func (h *AdminHandler) ListPendingResources(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.resourceRepo.ListByStatus(domain.ResourceStatusPending, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resources"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": list})
}

func (h *AdminHandler) ApproveResource(c *gin.Context) {
	h.decide(c, domain.ResourceStatusApproved, "")
}

func (h *AdminHandler) RejectResource(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rejection reason required"})
		return
	}
	h.decide(c, domain.ResourceStatusRejected, req.Reason)
}

func (h *AdminHandler) decide(c *gin.Context, toStatus, reason string) {
	adminID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	res, err := h.resourceRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	ok, err := h.resourceRepo.SetStatus(res.ID, toStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "resource already reviewed"})
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &adminID,
		Action:     "resource." + toStatus,
		Resource:   "resource",
		ResourceID: fmt.Sprintf("%d", res.ID),
		IP:         c.ClientIP(),
	})
	if h.notifSvc != nil && res.AuthorID != 0 {
		_ = h.notifSvc.NotifyResourceDecision(res.AuthorID, res.ID, toStatus == domain.ResourceStatusApproved, reason)
	}
	res.Status = toStatus
	c.JSON(http.StatusOK, gin.H{"resource": res})
}
