package handler

import (
	"errors"
	"net/http"
	"strconv"

	"antigravity/internal/middleware"
	"antigravity/internal/repository"
	"antigravity/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutSvc   *service.CheckoutService
	settlementSvc *service.SettlementService
	purchaseRepo  *repository.PurchaseRepository
	accessRepo    *repository.AccessRepository
}

func NewCheckoutHandler(
	checkoutSvc *service.CheckoutService,
	settlementSvc *service.SettlementService,
	purchaseRepo *repository.PurchaseRepository,
	accessRepo *repository.AccessRepository,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutSvc:   checkoutSvc,
		settlementSvc: settlementSvc,
		purchaseRepo:  purchaseRepo,
		accessRepo:    accessRepo,
	}
}

// CreateOrder starts checkout for a paid resource. Returns the provider
// order the client pays against.
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	buyerID := middleware.GetUserID(c)
	resourceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || resourceID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	var req struct {
		Method string `json:"method" binding:"required,oneof=razorpay paypal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, order, err := h.checkoutSvc.CreateOrder(c.Request.Context(), buyerID, uint(resourceID), req.Method)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResourceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		case errors.Is(err, service.ErrNotPurchasable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "resource is not purchasable"})
		case errors.Is(err, service.ErrOwnResource):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot buy your own resource"})
		case errors.Is(err, service.ErrAlreadyOwned):
			c.JSON(http.StatusBadRequest, gin.H{"error": "resource already purchased"})
		case errors.Is(err, service.ErrUnknownMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported payment method"})
		case errors.Is(err, service.ErrProviderFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"purchase_id": p.ID,
		"order":       order,
		"amount":      p.AmountTotalCents,
		"currency":    p.Currency,
	})
}

// Capture finalizes a purchase from the client side after the provider flow.
func (h *CheckoutHandler) Capture(c *gin.Context) {
	var req struct {
		OrderID   string `json:"order_id" binding:"required"`
		PaymentID string `json:"payment_id" binding:"required"`
		Signature string `json:"signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.settlementSvc.Capture(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, service.ErrAlreadyProcessed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "order already processed"})
		case errors.Is(err, service.ErrPaymentDeclined):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment declined"})
		case errors.Is(err, service.ErrProviderFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "capture failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "COMPLETED", "transaction_id": p.PaymentID, "purchase": p})
}

// CreateFeatureOrder starts a featured-listing payment for the caller's own
// resource.
func (h *CheckoutHandler) CreateFeatureOrder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	resourceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || resourceID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	var req struct {
		Days   int    `json:"days" binding:"omitempty,min=1,max=90"`
		Method string `json:"method" binding:"required,oneof=razorpay paypal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pay, order, err := h.checkoutSvc.CreateFeatureOrder(c.Request.Context(), userID, uint(resourceID), req.Days, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResourceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your resource"})
		case errors.Is(err, service.ErrUnknownMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported payment method"})
		case errors.Is(err, service.ErrProviderFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment_id": pay.ID, "order": order, "amount": pay.AmountCents})
}

// ListMine returns the caller's purchase history.
func (h *CheckoutHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.purchaseRepo.ListByBuyer(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchases"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": list})
}

// ListLibrary returns the resources the caller has access to.
func (h *CheckoutHandler) ListLibrary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.accessRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load library"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"library": list})
}
