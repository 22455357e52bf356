package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"antigravity/internal/service"
	"antigravity/pkg/payment"

	"github.com/gin-gonic/gin"
)

// razorpayEvent is the subset of the webhook payload we act on.
type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type RazorpayWebhookHandler struct {
	webhookSecret string
	settlementSvc *service.SettlementService
}

func NewRazorpayWebhookHandler(webhookSecret string, settlementSvc *service.SettlementService) *RazorpayWebhookHandler {
	return &RazorpayWebhookHandler{webhookSecret: webhookSecret, settlementSvc: settlementSvc}
}

// Handle processes Razorpay webhook events. The signature is verified over
// the raw body before anything touches the database; a mismatch is a hard
// 400. Unknown order ids are logged and acknowledged so Razorpay stops
// retrying.
func (h *RazorpayWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sig := c.GetHeader("x-razorpay-signature")
	if !payment.VerifyWebhookSignature(body, sig, h.webhookSecret) {
		log.Printf("[RAZORPAY webhook] signature mismatch from %s", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}
	var ev razorpayEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	orderID := ev.Payload.Payment.Entity.OrderID
	paymentID := ev.Payload.Payment.Entity.ID
	log.Printf("[RAZORPAY webhook] event=%s order_id=%s payment_id=%s", ev.Event, orderID, paymentID)
	if orderID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	switch ev.Event {
	case "payment.captured", "order.paid":
		h.applySuccess(c, orderID, paymentID)
	case "payment.failed":
		h.applyFailure(c, orderID)
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *RazorpayWebhookHandler) applySuccess(c *gin.Context, orderID, paymentID string) {
	_, applied, err := h.settlementSvc.SettlePurchase(orderID, paymentID)
	if err == nil {
		if !applied {
			log.Printf("[RAZORPAY webhook] order %s already settled, acking", orderID)
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if errors.Is(err, service.ErrOrderNotFound) {
		// Not a purchase; maybe a featured-listing payment.
		if _, _, perr := h.settlementSvc.SettlePayment(orderID, paymentID); perr != nil {
			if errors.Is(perr, service.ErrOrderNotFound) {
				log.Printf("[RAZORPAY webhook] unknown order_id=%s, acking", orderID)
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	log.Printf("[RAZORPAY webhook] settlement error order=%s: %v", orderID, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
}

func (h *RazorpayWebhookHandler) applyFailure(c *gin.Context, orderID string) {
	if _, err := h.settlementSvc.FailPurchase(orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			if _, perr := h.settlementSvc.FailPayment(orderID); perr != nil && !errors.Is(perr, service.ErrOrderNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
				return
			}
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
