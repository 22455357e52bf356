package service

import (
	"context"
	"testing"
	"time"

	"antigravity/internal/domain"
	"antigravity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlePurchase(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)

	settled, applied, err := e.settlement.SettlePurchase(p.OrderID, "pay_123")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.PurchaseStatusCompleted, settled.Status)
	assert.Equal(t, "pay_123", settled.PaymentID)
	require.NotNil(t, settled.CompletedAt)

	earnings, err := e.earnings.GetByUserID(creator.ID)
	require.NoError(t, err)
	require.NotNil(t, earnings)
	assert.Equal(t, int64(1000), earnings.TotalEarningsCents)
	assert.Equal(t, int64(1), earnings.SalesCount)

	has, err := e.access.Has(buyer.ID, res.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSettlePurchaseReplayIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)

	_, applied, err := e.settlement.SettlePurchase(p.OrderID, "pay_1")
	require.NoError(t, err)
	assert.True(t, applied)

	// Webhook retry delivers the same event again.
	settled, applied, err := e.settlement.SettlePurchase(p.OrderID, "pay_1")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, domain.PurchaseStatusCompleted, settled.Status)

	earnings, err := e.earnings.GetByUserID(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), earnings.TotalEarningsCents, "replay must not credit twice")
	assert.Equal(t, int64(1), earnings.SalesCount)

	var accessRows int64
	require.NoError(t, e.db.Model(&models.UserResourceAccess{}).
		Where("user_id = ?", buyer.ID).Count(&accessRows).Error)
	assert.Equal(t, int64(1), accessRows)
}

func TestCaptureSettles(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)

	settled, err := e.settlement.Capture(ctx, p.OrderID, "pay_1", "sig")
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusCompleted, settled.Status)

	// A second capture reports the terminal state instead of reprocessing.
	_, err = e.settlement.Capture(ctx, p.OrderID, "pay_1", "sig")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestCaptureAfterWebhookConverges(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)

	// Webhook lands first.
	_, applied, err := e.settlement.SettlePurchase(p.OrderID, "pay_wh")
	require.NoError(t, err)
	assert.True(t, applied)

	// Client capture arrives late and sees the completed order.
	_, err = e.settlement.Capture(ctx, p.OrderID, "pay_client", "sig")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	earnings, err := e.earnings.GetByUserID(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), earnings.TotalEarningsCents)
}

func TestCaptureDeclined(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)

	e.stub.DeclineAll = true
	_, err = e.settlement.Capture(ctx, p.OrderID, "pay_1", "bad")
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	stored, err := e.purchases.GetByOrderID(p.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusFailed, stored.Status)

	// No ledger or access side effects on decline.
	earnings, err := e.earnings.GetByUserID(creator.ID)
	require.NoError(t, err)
	assert.Nil(t, earnings)
	has, err := e.access.Has(buyer.ID, res.ID)
	require.NoError(t, err)
	assert.False(t, has)

	// Buyer can retry with a fresh order once the provider recovers.
	e.stub.DeclineAll = false
	p2, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)
	_, err = e.settlement.Capture(ctx, p2.OrderID, "pay_2", "sig")
	require.NoError(t, err)
}

func TestSettleUnknownOrder(t *testing.T) {
	e := newTestEnv(t)
	_, _, err := e.settlement.SettlePurchase("order_does_not_exist", "pay_1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Nothing mutated.
	var n int64
	require.NoError(t, e.db.Model(&models.CreatorEarnings{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSplitTransitionAcrossSales(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	buyers := []*models.User{
		e.createUser(t, "b1", domain.RoleUser),
		e.createUser(t, "b2", domain.RoleUser),
		e.createUser(t, "b3", domain.RoleUser),
	}
	wantEarnings := []int64{1000, 1000, 800}
	wantPercent := []int{100, 100, 80}

	var total int64
	for i, b := range buyers {
		p, _, err := e.checkout.CreateOrder(ctx, b.ID, res.ID, "razorpay")
		require.NoError(t, err)
		assert.Equal(t, wantPercent[i], p.CreatorPercent, "sale %d", i+1)
		assert.Equal(t, wantEarnings[i], p.CreatorEarningsCents, "sale %d", i+1)
		_, applied, err := e.settlement.SettlePurchase(p.OrderID, "pay")
		require.NoError(t, err)
		require.True(t, applied)
		total += wantEarnings[i]
	}

	earnings, err := e.earnings.GetByUserID(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, total, earnings.TotalEarningsCents)
	assert.Equal(t, int64(3), earnings.SalesCount)
}

func TestSplitFrozenAtOrderTime(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)

	// Price changes while the order is pending; settlement still uses the
	// amounts frozen on the purchase row.
	res.PriceCents = 99999
	require.NoError(t, e.resources.Update(res))

	settled, _, err := e.settlement.SettlePurchase(p.OrderID, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), settled.AmountTotalCents)

	earnings, err := e.earnings.GetByUserID(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), earnings.TotalEarningsCents)
}

func TestSettlePaymentExtendsFeaturedWindow(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	pay, _, err := e.checkout.CreateFeatureOrder(ctx, creator.ID, res.ID, 7, "razorpay")
	require.NoError(t, err)

	settled, applied, err := e.settlement.SettlePayment(pay.OrderID, "pay_ft")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.PaymentStatusSucceeded, settled.Status)

	fresh, err := e.resources.GetByID(res.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.FeaturedUntil)
	assert.True(t, fresh.IsFeatured(time.Now()))
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *fresh.FeaturedUntil, time.Minute)

	// Replay is a no-op and the window does not double.
	_, applied, err = e.settlement.SettlePayment(pay.OrderID, "pay_ft")
	require.NoError(t, err)
	assert.False(t, applied)
	again, err := e.resources.GetByID(res.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.FeaturedUntil.Unix(), again.FeaturedUntil.Unix())
}

func TestFailPurchaseAfterCompletionIsNoOp(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)
	_, _, err = e.settlement.SettlePurchase(p.OrderID, "pay_1")
	require.NoError(t, err)

	// A late failure event cannot claw back a completed purchase.
	failed, err := e.settlement.FailPurchase(p.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusCompleted, failed.Status)
}

func TestMarkFailedGuardedByPendingStatus(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	buyer := e.createUser(t, "buyer", domain.RoleUser)
	res := e.createResource(t, creator.ID, 1000)
	ctx := context.Background()

	p, _, err := e.checkout.CreateOrder(ctx, buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)
	_, _, err = e.settlement.SettlePurchase(p.OrderID, "pay_1")
	require.NoError(t, err)

	// The guarded update refuses to touch a completed row, so a failure
	// signal racing the settlement cannot flip it back.
	ok, err := e.purchases.MarkFailed(nil, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	fresh, err := e.purchases.GetByOrderID(p.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusCompleted, fresh.Status)
}

func TestExtendFeaturedComposesWindows(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	res := e.createResource(t, creator.ID, 1000)
	now := time.Now().Truncate(time.Second)

	require.NoError(t, e.resources.ExtendFeatured(nil, res.ID, 7, now))
	r1, err := e.resources.GetByID(res.ID)
	require.NoError(t, err)
	require.NotNil(t, r1.FeaturedUntil)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), *r1.FeaturedUntil, time.Second)

	// An active window extends from its end, not from now.
	require.NoError(t, e.resources.ExtendFeatured(nil, res.ID, 3, now))
	r2, err := e.resources.GetByID(res.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(10*24*time.Hour), *r2.FeaturedUntil, time.Second)

	// A lapsed window restarts from the settlement time.
	later := now.Add(30 * 24 * time.Hour)
	require.NoError(t, e.resources.ExtendFeatured(nil, res.ID, 2, later))
	r3, err := e.resources.GetByID(res.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, later.Add(2*24*time.Hour), *r3.FeaturedUntil, time.Second)
}
