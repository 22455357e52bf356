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

// paypalEvent is the subset of the webhook payload we act on.
type paypalEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID                string `json:"id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

type PayPalWebhookHandler struct {
	webhookSecret string
	settlementSvc *service.SettlementService
}

func NewPayPalWebhookHandler(webhookSecret string, settlementSvc *service.SettlementService) *PayPalWebhookHandler {
	return &PayPalWebhookHandler{webhookSecret: webhookSecret, settlementSvc: settlementSvc}
}

// Handle processes PayPal webhook events, same contract as the Razorpay
// handler: verify the shared-secret HMAC over the raw body before any
// database access, 400 on mismatch, 200 ack for unknown orders.
func (h *PayPalWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sig := c.GetHeader("paypal-transmission-sig")
	if !payment.VerifyWebhookSignature(body, sig, h.webhookSecret) {
		log.Printf("[PAYPAL webhook] signature mismatch from %s", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}
	var ev paypalEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	orderID := ev.Resource.SupplementaryData.RelatedIDs.OrderID
	captureID := ev.Resource.ID
	if orderID == "" && ev.EventType == "CHECKOUT.ORDER.APPROVED" {
		// For order-level events the resource id IS the order id.
		orderID = ev.Resource.ID
		captureID = ""
	}
	log.Printf("[PAYPAL webhook] event=%s order_id=%s capture_id=%s", ev.EventType, orderID, captureID)
	if orderID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	switch ev.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		h.applySuccess(c, orderID, captureID)
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		h.applyFailure(c, orderID)
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *PayPalWebhookHandler) applySuccess(c *gin.Context, orderID, captureID string) {
	_, applied, err := h.settlementSvc.SettlePurchase(orderID, captureID)
	if err == nil {
		if !applied {
			log.Printf("[PAYPAL webhook] order %s already settled, acking", orderID)
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if errors.Is(err, service.ErrOrderNotFound) {
		if _, _, perr := h.settlementSvc.SettlePayment(orderID, captureID); perr != nil {
			if errors.Is(perr, service.ErrOrderNotFound) {
				log.Printf("[PAYPAL webhook] unknown order_id=%s, acking", orderID)
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	log.Printf("[PAYPAL webhook] settlement error order=%s: %v", orderID, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
}

func (h *PayPalWebhookHandler) applyFailure(c *gin.Context, orderID string) {
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
