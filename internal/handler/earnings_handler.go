package handler

import (
	"net/http"

	"antigravity/internal/middleware"
	"antigravity/internal/repository"
	"antigravity/internal/service"

	"github.com/gin-gonic/gin"
)

type EarningsHandler struct {
	earningsRepo *repository.EarningsRepository
	purchaseRepo *repository.PurchaseRepository
	payoutSvc    *service.PayoutService
}

func NewEarningsHandler(earningsRepo *repository.EarningsRepository, purchaseRepo *repository.PurchaseRepository, payoutSvc *service.PayoutService) *EarningsHandler {
	return &EarningsHandler{earningsRepo: earningsRepo, purchaseRepo: purchaseRepo, payoutSvc: payoutSvc}
}

// Get returns the caller's lifetime earnings, available balance and recent
// completed sales.
func (h *EarningsHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	e, err := h.earningsRepo.GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}
	var totalCents int64
	var salesCount int64
	if e != nil {
		totalCents = e.TotalEarningsCents
		salesCount = e.SalesCount
	}
	balance, err := h.payoutSvc.AvailableBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}
	recent, err := h.purchaseRepo.ListCompletedByCreator(userID, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_earnings_cents":    totalCents,
		"sales_count":             salesCount,
		"available_balance_cents": balance,
		"recent_sales":            recent,
	})
}
