package service

import (
	"context"
	"fmt"
	"testing"

	"antigravity/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// earnCents runs a full paid sale so the creator ends up with earnings.
func earnCents(t *testing.T, e *testEnv, creatorID uint, amount int64) {
	t.Helper()
	buyer := e.createUser(t, uniqueName(t), domain.RoleUser)
	res := e.createResource(t, creatorID, amount)
	p, _, err := e.checkout.CreateOrder(context.Background(), buyer.ID, res.ID, "razorpay")
	require.NoError(t, err)
	_, applied, err := e.settlement.SettlePurchase(p.OrderID, "pay")
	require.NoError(t, err)
	require.True(t, applied)
}

var nameSeq int

func uniqueName(t *testing.T) string {
	t.Helper()
	nameSeq++
	return fmt.Sprintf("buyer%d", nameSeq)
}

func TestPayoutRequest(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	earnCents(t, e, creator.ID, 5000)

	pr, err := e.payout.Request(creator.ID, 3000, "paypal", "creator@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPending, pr.Status)
	assert.Equal(t, int64(3000), pr.AmountCents)

	// Pending requests do not reserve balance; a second request for the full
	// amount is still accepted and gated at approval time.
	_, err = e.payout.Request(creator.ID, 5000, "paypal", "creator@example.com")
	require.NoError(t, err)
}

func TestPayoutRequestValidation(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)

	_, err := e.payout.Request(creator.ID, 0, "paypal", "x")
	assert.ErrorIs(t, err, ErrInvalidPayoutAmount)

	_, err = e.payout.Request(creator.ID, 100, "paypal", "x")
	assert.ErrorIs(t, err, ErrNoEarnings)

	earnCents(t, e, creator.ID, 1000)
	_, err = e.payout.Request(creator.ID, 2000, "paypal", "x")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestPayoutApprove(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	admin := e.createUser(t, "admin", domain.RoleAdmin)
	earnCents(t, e, creator.ID, 5000)

	pr, err := e.payout.Request(creator.ID, 3000, "paypal", "x")
	require.NoError(t, err)

	approved, err := e.payout.Approve(pr.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusApproved, approved.Status)
	require.NotNil(t, approved.ProcessedAt)

	balance, err := e.payout.AvailableBalance(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)

	// Decisions are terminal.
	_, err = e.payout.Approve(pr.ID, admin.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = e.payout.Reject(pr.ID, admin.ID, "nope")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestPayoutApprovalGatedByBalance(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	admin := e.createUser(t, "admin", domain.RoleAdmin)
	earnCents(t, e, creator.ID, 5000)

	first, err := e.payout.Request(creator.ID, 4000, "paypal", "x")
	require.NoError(t, err)
	second, err := e.payout.Request(creator.ID, 4000, "paypal", "x")
	require.NoError(t, err)

	_, err = e.payout.Approve(first.ID, admin.ID)
	require.NoError(t, err)

	// The first approval consumed the balance; the second stays pending.
	_, err = e.payout.Approve(second.ID, admin.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	fresh, err := e.payouts.GetByID(second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPending, fresh.Status)
}

func TestPayoutReject(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	admin := e.createUser(t, "admin", domain.RoleAdmin)
	earnCents(t, e, creator.ID, 5000)

	pr, err := e.payout.Request(creator.ID, 3000, "paypal", "x")
	require.NoError(t, err)

	_, err = e.payout.Reject(pr.ID, admin.ID, "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	rejected, err := e.payout.Reject(pr.ID, admin.ID, "account details do not match")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusRejected, rejected.Status)
	assert.Equal(t, "account details do not match", rejected.RejectionReason)

	// Rejection releases nothing because nothing was reserved.
	balance, err := e.payout.AvailableBalance(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)
}

func TestPayoutComplete(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", domain.RoleCreator)
	admin := e.createUser(t, "admin", domain.RoleAdmin)
	earnCents(t, e, creator.ID, 5000)

	pr, err := e.payout.Request(creator.ID, 3000, "paypal", "x")
	require.NoError(t, err)

	// Cannot complete before approval.
	_, err = e.payout.MarkCompleted(pr.ID, admin.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	_, err = e.payout.Approve(pr.ID, admin.ID)
	require.NoError(t, err)
	done, err := e.payout.MarkCompleted(pr.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusCompleted, done.Status)

	// Completed payouts still count against the balance.
	balance, err := e.payout.AvailableBalance(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
}

func TestPayoutNotFound(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createUser(t, "admin", domain.RoleAdmin)
	_, err := e.payout.Approve(12345, admin.ID)
	assert.ErrorIs(t, err, ErrPayoutNotFound)
}
