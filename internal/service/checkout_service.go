package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"antigravity/internal/domain"
	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrResourceNotFound  = errors.New("resource not found")
	ErrNotPurchasable    = errors.New("resource is free or has no payable author")
	ErrOwnResource       = errors.New("cannot buy your own resource")
	ErrNotOwner          = errors.New("resource does not belong to you")
	ErrAlreadyOwned      = errors.New("resource already purchased")
	ErrUnknownMethod     = errors.New("unsupported payment method")
	ErrProviderFailure   = errors.New("payment provider error")
)

// CheckoutService creates pending purchases with the revenue split frozen at
// order time, plus provider-side orders for the client to pay against.
type CheckoutService struct {
	db               *gorm.DB
	resources        *repository.ResourceRepository
	purchases        *repository.PurchaseRepository
	access           *repository.AccessRepository
	payments         *repository.PaymentRepository
	providers        map[string]payment.Provider
	featuredDayCents int64
}

func NewCheckoutService(
	db *gorm.DB,
	resources *repository.ResourceRepository,
	purchases *repository.PurchaseRepository,
	access *repository.AccessRepository,
	payments *repository.PaymentRepository,
	providers map[string]payment.Provider,
	featuredDayCents int64,
) *CheckoutService {
	if featuredDayCents <= 0 {
		featuredDayCents = 500
	}
	return &CheckoutService{
		db:               db,
		resources:        resources,
		purchases:        purchases,
		access:           access,
		payments:         payments,
		providers:        providers,
		featuredDayCents: featuredDayCents,
	}
}

// splitFor computes the creator/platform division for the next sale of a
// resource. Floor division on the creator share; the remainder cent goes to
// the platform so earnings + fee always equals the total.
func splitFor(priorSales, amountCents int64) (percent int, earnings, fee int64) {
	percent = domain.StandardCreatorPercent
	if priorSales < domain.IntroSaleCount {
		percent = domain.IntroCreatorPercent
	}
	earnings = amountCents * int64(percent) / 100
	fee = amountCents - earnings
	return percent, earnings, fee
}

// CreateOrder validates the resource, computes the split, creates the
// provider order, and only then persists the pending purchase. If the
// provider call fails no purchase row is ever written.
func (s *CheckoutService) CreateOrder(ctx context.Context, buyerID, resourceID uint, method string) (*models.Purchase, *payment.Order, error) {
	provider, ok := s.providers[method]
	if !ok {
		return nil, nil, ErrUnknownMethod
	}
	res, err := s.resources.GetByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrResourceNotFound
		}
		return nil, nil, err
	}
	if res.PriceCents <= 0 || res.AuthorID == 0 {
		return nil, nil, ErrNotPurchasable
	}
	if res.AuthorID == buyerID {
		return nil, nil, ErrOwnResource
	}
	if owned, err := s.access.Has(buyerID, resourceID); err != nil {
		return nil, nil, err
	} else if owned {
		return nil, nil, ErrAlreadyOwned
	}

	priorSales, err := s.purchases.CountCompletedForResource(resourceID)
	if err != nil {
		return nil, nil, err
	}
	percent, earnings, fee := splitFor(priorSales, res.PriceCents)

	order, err := provider.CreateOrder(ctx, payment.OrderRequest{
		AmountCents: res.PriceCents,
		Currency:    res.Currency,
		Receipt:     fmt.Sprintf("res-%d-%s", resourceID, uuid.New().String()[:8]),
		Description: res.Title,
	})
	if err != nil {
		log.Printf("[checkout] %s order create failed: resource=%d buyer=%d err=%v", method, resourceID, buyerID, err)
		return nil, nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	p := &models.Purchase{
		ResourceID:           resourceID,
		BuyerID:              buyerID,
		CreatorID:            res.AuthorID,
		AmountTotalCents:     res.PriceCents,
		CreatorEarningsCents: earnings,
		PlatformFeeCents:     fee,
		CreatorPercent:       percent,
		Currency:             res.Currency,
		PaymentMethod:        method,
		OrderID:              order.OrderID,
		Status:               domain.PurchaseStatusPending,
	}
	if err := s.purchases.Create(nil, p); err != nil {
		return nil, nil, err
	}
	log.Printf("[checkout] order created: purchase=%d order=%s split=%d/%d", p.ID, order.OrderID, earnings, fee)
	return p, order, nil
}

// CreateFeatureOrder starts a featured-listing payment for one of the
// creator's own resources. Platform-directed, so no split.
func (s *CheckoutService) CreateFeatureOrder(ctx context.Context, userID, resourceID uint, days int, method string) (*models.Payment, *payment.Order, error) {
	provider, ok := s.providers[method]
	if !ok {
		return nil, nil, ErrUnknownMethod
	}
	res, err := s.resources.GetByID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrResourceNotFound
		}
		return nil, nil, err
	}
	if res.AuthorID != userID {
		return nil, nil, ErrNotOwner
	}
	if days <= 0 {
		days = 7
	}
	amount := int64(days) * s.featuredDayCents

	order, err := provider.CreateOrder(ctx, payment.OrderRequest{
		AmountCents: amount,
		Currency:    res.Currency,
		Receipt:     fmt.Sprintf("feat-%d-%s", resourceID, uuid.New().String()[:8]),
		Description: fmt.Sprintf("Featured listing: %s (%dd)", res.Title, days),
	})
	if err != nil {
		log.Printf("[checkout] feature order create failed: resource=%d err=%v", resourceID, err)
		return nil, nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	pay := &models.Payment{
		UserID:       userID,
		ResourceID:   resourceID,
		AmountCents:  amount,
		Currency:     res.Currency,
		Provider:     method,
		OrderID:      order.OrderID,
		Purpose:      domain.PaymentPurposeFeatured,
		DurationDays: days,
		Status:       domain.PaymentStatusPending,
	}
	if err := s.payments.Create(pay); err != nil {
		return nil, nil, err
	}
	return pay, order, nil
}
