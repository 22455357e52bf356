package service

import (
	"fmt"
	"testing"
	"time"

	"antigravity/internal/database"
	"antigravity/internal/domain"
	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/pkg/payment"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a uniquely named in-memory SQLite database and migrates the
// schema. One open connection, so the shared cache lives for the whole test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

type testEnv struct {
	db         *gorm.DB
	users      *repository.UserRepository
	resources  *repository.ResourceRepository
	purchases  *repository.PurchaseRepository
	earnings   *repository.EarningsRepository
	access     *repository.AccessRepository
	payouts    *repository.PayoutRepository
	payments   *repository.PaymentRepository
	notifs     *repository.NotificationRepository
	stub       *payment.StubProvider
	checkout   *CheckoutService
	settlement *SettlementService
	payout     *PayoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	e := &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		resources: repository.NewResourceRepository(db),
		purchases: repository.NewPurchaseRepository(db),
		earnings:  repository.NewEarningsRepository(db),
		access:    repository.NewAccessRepository(db),
		payouts:   repository.NewPayoutRepository(db),
		payments:  repository.NewPaymentRepository(db),
		notifs:    repository.NewNotificationRepository(db),
		stub:      &payment.StubProvider{ProviderName: "razorpay"},
	}
	providers := map[string]payment.Provider{"razorpay": e.stub}
	notifier := NewNotificationService(e.notifs, nil)
	e.checkout = NewCheckoutService(db, e.resources, e.purchases, e.access, e.payments, providers, 500)
	e.settlement = NewSettlementService(db, e.purchases, e.payments, e.earnings, e.access, e.resources, providers, notifier)
	e.payout = NewPayoutService(e.payouts, e.earnings, repository.NewAuditLogRepository(db), notifier)
	return e
}

func (e *testEnv) createUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, e.users.Create(u))
	return u
}

func (e *testEnv) createResource(t *testing.T, authorID uint, priceCents int64) *models.Resource {
	t.Helper()
	r := &models.Resource{
		AuthorID:    authorID,
		Type:        domain.ResourceTypePrompt,
		Title:       "Test Resource",
		Slug:        fmt.Sprintf("test-resource-%d", time.Now().UnixNano()),
		Description: "a resource",
		Content:     "the paid body",
		PriceCents:  priceCents,
		Currency:    "USD",
		Status:      domain.ResourceStatusApproved,
	}
	require.NoError(t, e.resources.Create(r))
	return r
}
