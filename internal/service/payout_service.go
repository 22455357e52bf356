package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"
	"antigravity/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrPayoutNotFound      = errors.New("payout request not found")
	ErrAlreadyDecided      = errors.New("payout request already decided")
	ErrReasonRequired      = errors.New("rejection reason is required")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrInvalidPayoutAmount = errors.New("payout amount must be positive")
	ErrNoEarnings          = errors.New("no earnings to pay out")
)

// PayoutService handles the creator withdrawal workflow. Requests stay
// pending until an admin decides; approval re-checks the available balance
// so concurrent approvals cannot overdraw.
type PayoutService struct {
	payouts  *repository.PayoutRepository
	earnings *repository.EarningsRepository
	audits   *repository.AuditLogRepository
	notifier *NotificationService
}

func NewPayoutService(
	payouts *repository.PayoutRepository,
	earnings *repository.EarningsRepository,
	audits *repository.AuditLogRepository,
	notifier *NotificationService,
) *PayoutService {
	return &PayoutService{payouts: payouts, earnings: earnings, audits: audits, notifier: notifier}
}

// AvailableBalance is lifetime completed earnings minus everything already
// approved or paid. Pending requests do not reduce it; approval gates them.
func (s *PayoutService) AvailableBalance(creatorID uint) (int64, error) {
	e, err := s.earnings.GetByUserID(creatorID)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, nil
	}
	committed, err := s.payouts.SumPaidOrApproved(creatorID)
	if err != nil {
		return 0, err
	}
	return e.TotalEarningsCents - committed, nil
}

// Request opens a pending payout. The amount is validated against the
// current balance as a courtesy; the binding check happens at approval.
func (s *PayoutService) Request(creatorID uint, amountCents int64, paymentMethod, accountDetails string) (*models.PayoutRequest, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidPayoutAmount
	}
	balance, err := s.AvailableBalance(creatorID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, ErrNoEarnings
	}
	if amountCents > balance {
		return nil, ErrInsufficientBalance
	}
	pr := &models.PayoutRequest{
		CreatorID:      creatorID,
		AmountCents:    amountCents,
		PaymentMethod:  paymentMethod,
		AccountDetails: accountDetails,
		Status:         domain.PayoutStatusPending,
		RequestedAt:    time.Now(),
	}
	if err := s.payouts.Create(pr); err != nil {
		return nil, err
	}
	log.Printf("[payout] request %d opened: creator=%d amount=%d", pr.ID, creatorID, amountCents)
	return pr, nil
}

// Approve transitions pending -> approved after re-checking the balance.
// An insufficient balance leaves the request pending for a later decision.
func (s *PayoutService) Approve(id, adminID uint) (*models.PayoutRequest, error) {
	pr, err := s.payouts.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	if pr.Status != domain.PayoutStatusPending {
		return pr, ErrAlreadyDecided
	}
	balance, err := s.AvailableBalance(pr.CreatorID)
	if err != nil {
		return nil, err
	}
	if pr.AmountCents > balance {
		return pr, ErrInsufficientBalance
	}
	now := time.Now()
	ok, err := s.payouts.Decide(id, domain.PayoutStatusApproved, "", now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another admin decided first.
		fresh, err := s.payouts.GetByID(id)
		if err != nil {
			return nil, err
		}
		return fresh, ErrAlreadyDecided
	}
	pr.Status = domain.PayoutStatusApproved
	pr.ProcessedAt = &now
	s.audit(adminID, "payout.approve", pr.ID)
	log.Printf("[payout] request %d approved: creator=%d amount=%d admin=%d", pr.ID, pr.CreatorID, pr.AmountCents, adminID)
	if s.notifier != nil {
		_ = s.notifier.NotifyPayoutDecision(pr.CreatorID, pr.AmountCents, true, "")
	}
	return pr, nil
}

// Reject transitions pending -> rejected. A reason is mandatory; the creator
// sees it verbatim.
func (s *PayoutService) Reject(id, adminID uint, reason string) (*models.PayoutRequest, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	pr, err := s.payouts.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	if pr.Status != domain.PayoutStatusPending {
		return pr, ErrAlreadyDecided
	}
	now := time.Now()
	ok, err := s.payouts.Decide(id, domain.PayoutStatusRejected, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresh, err := s.payouts.GetByID(id)
		if err != nil {
			return nil, err
		}
		return fresh, ErrAlreadyDecided
	}
	pr.Status = domain.PayoutStatusRejected
	pr.RejectionReason = reason
	pr.ProcessedAt = &now
	s.audit(adminID, "payout.reject", pr.ID)
	log.Printf("[payout] request %d rejected: creator=%d reason=%q admin=%d", pr.ID, pr.CreatorID, reason, adminID)
	if s.notifier != nil {
		_ = s.notifier.NotifyPayoutDecision(pr.CreatorID, pr.AmountCents, false, reason)
	}
	return pr, nil
}

// MarkCompleted records that an approved payout was actually disbursed.
func (s *PayoutService) MarkCompleted(id, adminID uint) (*models.PayoutRequest, error) {
	pr, err := s.payouts.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	if pr.Status != domain.PayoutStatusApproved {
		return pr, ErrAlreadyDecided
	}
	ok, err := s.payouts.SetCompleted(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresh, err := s.payouts.GetByID(id)
		if err != nil {
			return nil, err
		}
		return fresh, ErrAlreadyDecided
	}
	pr.Status = domain.PayoutStatusCompleted
	s.audit(adminID, "payout.complete", pr.ID)
	return pr, nil
}

func (s *PayoutService) ListForCreator(creatorID uint) ([]models.PayoutRequest, error) {
	return s.payouts.ListByCreator(creatorID)
}

func (s *PayoutService) ListPending(limit, offset int) ([]models.PayoutRequest, error) {
	return s.payouts.ListByStatus(domain.PayoutStatusPending, limit, offset)
}

func (s *PayoutService) audit(adminID uint, action string, targetID uint) {
	if s.audits == nil {
		return
	}
	actor := adminID
	if err := s.audits.Create(&models.AuditLog{
		UserID:     &actor,
		Action:     action,
		Resource:   "payout_request",
		ResourceID: fmt.Sprintf("%d", targetID),
	}); err != nil {
		log.Printf("[payout] audit write failed: action=%s err=%v", action, err)
	}
}
