package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/pkg/payment"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyProcessed = errors.New("payment already processed")
	ErrPaymentDeclined  = errors.New("payment was declined")
)

// SettlementService moves purchases (and featured-listing payments) from
// pending to a terminal state. Two independent triggers converge here: the
// buyer's capture call and the provider webhook. Whichever observes "pending"
// first wins the conditional write; the loser sees the terminal state and
// short-circuits. All idempotency lives in the database, nothing is cached
// in process memory.
type SettlementService struct {
	db        *gorm.DB
	purchases *repository.PurchaseRepository
	payments  *repository.PaymentRepository
	earnings  *repository.EarningsRepository
	access    *repository.AccessRepository
	resources *repository.ResourceRepository
	providers map[string]payment.Provider
	notifier  *NotificationService
}

func NewSettlementService(
	db *gorm.DB,
	purchases *repository.PurchaseRepository,
	payments *repository.PaymentRepository,
	earnings *repository.EarningsRepository,
	access *repository.AccessRepository,
	resources *repository.ResourceRepository,
	providers map[string]payment.Provider,
	notifier *NotificationService,
) *SettlementService {
	return &SettlementService{
		db:        db,
		purchases: purchases,
		payments:  payments,
		earnings:  earnings,
		access:    access,
		resources: resources,
		providers: providers,
		notifier:  notifier,
	}
}

// SettlePurchase applies a successful payment signal for the given provider
// order. Returns the purchase and whether this call performed the mutation
// (false on replay or lost race). Unknown orders return ErrOrderNotFound;
// webhook callers are expected to acknowledge those without mutating.
func (s *SettlementService) SettlePurchase(orderID, paymentID string) (*models.Purchase, bool, error) {
	p, err := s.purchases.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, err
	}
	if p.Status != domain.PurchaseStatusPending {
		// Terminal already; replay-safe no-op.
		return p, false, nil
	}

	now := time.Now()
	applied := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.purchases.MarkCompleted(tx, p.ID, paymentID, now)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race against the other trigger; their transaction
			// carries the side effects.
			return nil
		}
		if err := s.earnings.CreditSale(tx, p.CreatorID, p.CreatorEarningsCents, now); err != nil {
			return err
		}
		if err := s.access.Grant(tx, p.BuyerID, p.ResourceID, p.ID, now); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if applied {
		p.Status = domain.PurchaseStatusCompleted
		p.PaymentID = paymentID
		p.CompletedAt = &now
		log.Printf("[settlement] purchase %d completed: order=%s earnings=%d fee=%d",
			p.ID, orderID, p.CreatorEarningsCents, p.PlatformFeeCents)
		if s.notifier != nil {
			_ = s.notifier.NotifySale(p.CreatorID, p.CreatorEarningsCents, p.ResourceID)
			_ = s.notifier.NotifyPaymentConfirmed(p.BuyerID, p.AmountTotalCents, orderID)
		}
	} else {
		// Re-read so callers see the state the winner left behind.
		if fresh, err := s.purchases.GetByOrderID(orderID); err == nil {
			p = fresh
		}
	}
	return p, applied, nil
}

// FailPurchase records a declined or failed capture. Ledger and access are
// untouched; the buyer may retry with a fresh order.
func (s *SettlementService) FailPurchase(orderID string) (*models.Purchase, error) {
	p, err := s.purchases.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if p.Status != domain.PurchaseStatusPending {
		return p, nil
	}
	ok, err := s.purchases.MarkFailed(nil, p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The webhook settled the order between our read and the guarded
		// update. Report the state it left behind.
		return s.purchases.GetByOrderID(orderID)
	}
	p.Status = domain.PurchaseStatusFailed
	log.Printf("[settlement] purchase %d failed: order=%s", p.ID, orderID)
	return p, nil
}

// Capture is the client-initiated settlement path: finalize with the provider
// first, then run the same idempotent transition the webhook uses. A caller
// racing the webhook converges on the completed state either way.
func (s *SettlementService) Capture(ctx context.Context, orderID, paymentID, signature string) (*models.Purchase, error) {
	p, err := s.purchases.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	switch p.Status {
	case domain.PurchaseStatusCompleted:
		return p, ErrAlreadyProcessed
	case domain.PurchaseStatusFailed:
		return p, ErrPaymentDeclined
	}

	provider, ok := s.providers[p.PaymentMethod]
	if !ok {
		return nil, fmt.Errorf("no provider registered for %q", p.PaymentMethod)
	}
	result, err := provider.Capture(ctx, payment.CaptureRequest{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) || errors.Is(err, payment.ErrBadSignature) {
			if _, ferr := s.FailPurchase(orderID); ferr != nil {
				log.Printf("[settlement] mark failed errored: order=%s err=%v", orderID, ferr)
			}
			return nil, ErrPaymentDeclined
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	settled, applied, err := s.SettlePurchase(orderID, result.PaymentID)
	if err != nil {
		return nil, err
	}
	if !applied && settled.Status != domain.PurchaseStatusCompleted {
		// Webhook flipped it to failed between our checks.
		return settled, ErrPaymentDeclined
	}
	return settled, nil
}

// SettlePayment is the featured-listing counterpart of SettlePurchase: flip
// the payment and stamp the resource's featured window in one transaction.
func (s *SettlementService) SettlePayment(orderID, paymentID string) (*models.Payment, bool, error) {
	pay, err := s.payments.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, err
	}
	if pay.Status != domain.PaymentStatusPending {
		return pay, false, nil
	}

	now := time.Now()
	applied := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.payments.MarkSucceeded(tx, pay.ID, paymentID, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := s.resources.ExtendFeatured(tx, pay.ResourceID, pay.DurationDays, now); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if applied {
		pay.Status = domain.PaymentStatusSucceeded
		log.Printf("[settlement] payment %d succeeded: order=%s resource=%d featured for %dd",
			pay.ID, orderID, pay.ResourceID, pay.DurationDays)
		if s.notifier != nil {
			_ = s.notifier.NotifyPaymentConfirmed(pay.UserID, pay.AmountCents, orderID)
		}
	}
	return pay, applied, nil
}

// FailPayment records a failed featured-listing payment.
func (s *SettlementService) FailPayment(orderID string) (*models.Payment, error) {
	pay, err := s.payments.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if pay.Status != domain.PaymentStatusPending {
		return pay, nil
	}
	ok, err := s.payments.MarkFailed(pay.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.payments.GetByOrderID(orderID)
	}
	pay.Status = domain.PaymentStatusFailed
	return pay, nil
}
