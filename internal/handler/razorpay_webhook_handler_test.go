package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"antigravity/internal/database"
	"antigravity/internal/domain"
	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/internal/service"
	"antigravity/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const webhookSecret = "whsec_test"

type webhookTestEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	purchases *repository.PurchaseRepository
	earnings  *repository.EarningsRepository
}

func newWebhookTestEnv(t *testing.T) *webhookTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	purchases := repository.NewPurchaseRepository(db)
	payments := repository.NewPaymentRepository(db)
	earnings := repository.NewEarningsRepository(db)
	access := repository.NewAccessRepository(db)
	resources := repository.NewResourceRepository(db)
	providers := map[string]payment.Provider{"razorpay": &payment.StubProvider{ProviderName: "razorpay"}}
	settlement := service.NewSettlementService(db, purchases, payments, earnings, access, resources, providers, nil)

	r := gin.New()
	r.POST("/webhooks/razorpay", NewRazorpayWebhookHandler(webhookSecret, settlement).Handle)

	return &webhookTestEnv{db: db, router: r, purchases: purchases, earnings: earnings}
}

func (e *webhookTestEnv) seedPendingPurchase(t *testing.T, orderID string) *models.Purchase {
	t.Helper()
	p := &models.Purchase{
		ResourceID:           1,
		BuyerID:              2,
		CreatorID:            3,
		AmountTotalCents:     1000,
		CreatorEarningsCents: 1000,
		PlatformFeeCents:     0,
		CreatorPercent:       100,
		Currency:             "USD",
		PaymentMethod:        domain.MethodRazorpay,
		OrderID:              orderID,
		Status:               domain.PurchaseStatusPending,
	}
	require.NoError(t, e.purchases.Create(nil, p))
	return p
}

func (e *webhookTestEnv) post(t *testing.T, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	if sig != "" {
		req.Header.Set("x-razorpay-signature", sig)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func capturedEvent(orderID, paymentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"%s","order_id":"%s","status":"captured"}}}}`,
		paymentID, orderID))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	e := newWebhookTestEnv(t)
	e.seedPendingPurchase(t, "order_1")
	body := capturedEvent("order_1", "pay_1")

	w := e.post(t, body, "forged")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.post(t, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A bad signature must not touch the purchase.
	p, err := e.purchases.GetByOrderID("order_1")
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusPending, p.Status)
}

func TestWebhookSettlesPurchase(t *testing.T) {
	e := newWebhookTestEnv(t)
	e.seedPendingPurchase(t, "order_1")
	body := capturedEvent("order_1", "pay_1")

	w := e.post(t, body, payment.SignBody(body, webhookSecret))
	assert.Equal(t, http.StatusOK, w.Code)

	p, err := e.purchases.GetByOrderID("order_1")
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusCompleted, p.Status)
	assert.Equal(t, "pay_1", p.PaymentID)

	earned, err := e.earnings.GetByUserID(3)
	require.NoError(t, err)
	require.NotNil(t, earned)
	assert.Equal(t, int64(1000), earned.TotalEarningsCents)
}

func TestWebhookReplayAcksWithoutDoubleCredit(t *testing.T) {
	e := newWebhookTestEnv(t)
	e.seedPendingPurchase(t, "order_1")
	body := capturedEvent("order_1", "pay_1")
	sig := payment.SignBody(body, webhookSecret)

	assert.Equal(t, http.StatusOK, e.post(t, body, sig).Code)
	assert.Equal(t, http.StatusOK, e.post(t, body, sig).Code)
	assert.Equal(t, http.StatusOK, e.post(t, body, sig).Code)

	earned, err := e.earnings.GetByUserID(3)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), earned.TotalEarningsCents)
	assert.Equal(t, int64(1), earned.SalesCount)
}

func TestWebhookUnknownOrderAcked(t *testing.T) {
	e := newWebhookTestEnv(t)
	body := capturedEvent("order_nobody_knows", "pay_1")

	w := e.post(t, body, payment.SignBody(body, webhookSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)

	var n int64
	require.NoError(t, e.db.Model(&models.Purchase{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestWebhookFailureEvent(t *testing.T) {
	e := newWebhookTestEnv(t)
	e.seedPendingPurchase(t, "order_1")
	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","status":"failed"}}}}`)

	w := e.post(t, body, payment.SignBody(body, webhookSecret))
	assert.Equal(t, http.StatusOK, w.Code)

	p, err := e.purchases.GetByOrderID("order_1")
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseStatusFailed, p.Status)

	earned, err := e.earnings.GetByUserID(3)
	require.NoError(t, err)
	assert.Nil(t, earned)
}
