package service

import (
	"encoding/json"
	"fmt"
	"log"

	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/internal/ws"
)

// NotificationService persists notification rows and pushes them out over the
// events hub. Everything here is best-effort: a failed notification never
// fails the operation that triggered it.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) notify(userID uint, ntype, title, body string, data map[string]interface{}) error {
	payload := ""
	if data != nil {
		raw, _ := json.Marshal(data)
		payload = string(raw)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   ntype,
		Title:  title,
		Body:   body,
		Data:   payload,
	}
	if err := s.repo.Create(n); err != nil {
		log.Printf("[notify] persist failed: user=%d type=%s err=%v", userID, ntype, err)
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{
			"type":  ntype,
			"id":    n.ID,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
	return nil
}

func (s *NotificationService) NotifySale(creatorID uint, earningsCents int64, resourceID uint) error {
	return s.notify(creatorID, models.NotifSale,
		"You made a sale",
		fmt.Sprintf("You earned %s from a sale.", formatCents(earningsCents)),
		map[string]interface{}{"resource_id": resourceID, "earnings_cents": earningsCents})
}

func (s *NotificationService) NotifyPaymentConfirmed(userID uint, amountCents int64, orderID string) error {
	return s.notify(userID, models.NotifPaymentConfirmed,
		"Payment confirmed",
		fmt.Sprintf("Your payment of %s was confirmed.", formatCents(amountCents)),
		map[string]interface{}{"order_id": orderID, "amount_cents": amountCents})
}

func (s *NotificationService) NotifyPayoutDecision(creatorID uint, amountCents int64, approved bool, reason string) error {
	if approved {
		return s.notify(creatorID, models.NotifPayoutApproved,
			"Payout approved",
			fmt.Sprintf("Your payout of %s was approved.", formatCents(amountCents)),
			map[string]interface{}{"amount_cents": amountCents})
	}
	return s.notify(creatorID, models.NotifPayoutRejected,
		"Payout rejected",
		fmt.Sprintf("Your payout of %s was rejected: %s", formatCents(amountCents), reason),
		map[string]interface{}{"amount_cents": amountCents, "reason": reason})
}

func (s *NotificationService) NotifyNewFollower(creatorID, followerID uint, followerName string) error {
	return s.notify(creatorID, models.NotifNewFollower,
		"New follower",
		fmt.Sprintf("%s started following you.", followerName),
		map[string]interface{}{"follower_id": followerID})
}

func (s *NotificationService) NotifyResourceDecision(authorID, resourceID uint, approved bool, reason string) error {
	if approved {
		return s.notify(authorID, models.NotifResourceApproved,
			"Resource approved",
			"Your resource is now live in the directory.",
			map[string]interface{}{"resource_id": resourceID})
	}
	return s.notify(authorID, models.NotifResourceRejected,
		"Resource rejected",
		fmt.Sprintf("Your resource was rejected: %s", reason),
		map[string]interface{}{"resource_id": resourceID, "reason": reason})
}

func (s *NotificationService) List(userID uint, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByUserID(userID, limit, offset)
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	return s.repo.MarkRead(id, userID)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
