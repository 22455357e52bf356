package handler

import (
	"errors"
	"net/http"
	"strconv"

	"antigravity/internal/middleware"
	"antigravity/internal/service"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	payoutSvc *service.PayoutService
}

func NewPayoutHandler(payoutSvc *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc}
}

// Request opens a payout request against the caller's available balance.
func (h *PayoutHandler) Request(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		AmountCents    int64  `json:"amount_cents" binding:"required,min=1"`
		PaymentMethod  string `json:"payment_method" binding:"required,oneof=razorpay paypal bank"`
		AccountDetails string `json:"account_details" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pr, err := h.payoutSvc.Request(userID, req.AmountCents, req.PaymentMethod, req.AccountDetails)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoEarnings), errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidPayoutAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payout request failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payout": pr})
}

// ListMine returns the caller's payout history plus current balance.
func (h *PayoutHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.payoutSvc.ListForCreator(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payouts"})
		return
	}
	balance, err := h.payoutSvc.AvailableBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": list, "available_balance_cents": balance})
}

// ListPending returns pending requests for admin review, oldest first.
func (h *PayoutHandler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.payoutSvc.ListPending(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payouts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": list})
}

func (h *PayoutHandler) Approve(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	pr, err := h.payoutSvc.Approve(uint(id), adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payout request not found"})
		case errors.Is(err, service.ErrAlreadyDecided):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payout request already decided", "payout": pr})
		case errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "creator balance insufficient, request left pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "approval failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": pr})
}

func (h *PayoutHandler) Reject(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rejection reason required"})
		return
	}
	pr, err := h.payoutSvc.Reject(uint(id), adminID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payout request not found"})
		case errors.Is(err, service.ErrAlreadyDecided):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payout request already decided", "payout": pr})
		case errors.Is(err, service.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "rejection reason required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rejection failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": pr})
}

// Complete marks an approved payout as disbursed.
func (h *PayoutHandler) Complete(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}
	pr, err := h.payoutSvc.MarkCompleted(uint(id), adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payout request not found"})
		case errors.Is(err, service.ErrAlreadyDecided):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payout request is not approved", "payout": pr})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": pr})
}
