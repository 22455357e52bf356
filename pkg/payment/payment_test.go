package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignBodyDeterministic(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := SignBody(body, "secret")
	assert.Equal(t, sig, SignBody(body, "secret"))
	assert.NotEqual(t, sig, SignBody(body, "other-secret"))
	assert.NotEqual(t, sig, SignBody([]byte(`{}`), "secret"))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := SignBody(body, "secret")

	assert.True(t, VerifyWebhookSignature(body, sig, "secret"))
	assert.False(t, VerifyWebhookSignature(body, sig, "wrong"))
	assert.False(t, VerifyWebhookSignature(body, "tampered", "secret"))
	assert.False(t, VerifyWebhookSignature(body, "", "secret"), "empty signature must never verify")
}

func TestRazorpayCaptureVerifiesCheckoutProof(t *testing.T) {
	p := NewRazorpayProvider("key_id", "key_secret")
	ctx := context.Background()

	good := SignBody([]byte("order_1|pay_1"), "key_secret")
	result, err := p.Capture(ctx, CaptureRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: good})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", result.PaymentID)
	assert.Equal(t, "COMPLETED", result.Status)

	_, err = p.Capture(ctx, CaptureRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "forged"})
	assert.ErrorIs(t, err, ErrBadSignature)

	// A valid signature for a different order must not transfer.
	_, err = p.Capture(ctx, CaptureRequest{OrderID: "order_2", PaymentID: "pay_1", Signature: good})
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = p.Capture(ctx, CaptureRequest{OrderID: "order_1", PaymentID: "pay_1"})
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 1000, req["amount"])
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "order_abc", "amount": 1000, "currency": "INR", "status": "created",
		})
	}))
	defer srv.Close()

	p := NewRazorpayProvider("key_id", "key_secret")
	p.BaseURL = srv.URL
	order, err := p.CreateOrder(context.Background(), OrderRequest{AmountCents: 1000, Currency: "INR", Receipt: "res-1"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.OrderID)
	assert.Equal(t, "key_id", order.KeyID)
}

func TestPayPalCaptureDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"name": "UNPROCESSABLE_ENTITY",
				"details": []map[string]string{
					{"issue": "INSTRUMENT_DECLINED"},
				},
			})
		}
	}))
	defer srv.Close()

	p := NewPayPalProvider(srv.URL, "client", "secret")
	_, err := p.Capture(context.Background(), CaptureRequest{OrderID: "ord_1"})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestPayPalCreateOrderUsesMajorUnits(t *testing.T) {
	var gotAmount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
		case "/v2/checkout/orders":
			var req struct {
				PurchaseUnits []struct {
					Amount struct {
						Value string `json:"value"`
					} `json:"amount"`
				} `json:"purchase_units"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotAmount = req.PurchaseUnits[0].Amount.Value
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "ord_1", "status": "CREATED"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewPayPalProvider(srv.URL, "client", "secret")
	order, err := p.CreateOrder(context.Background(), OrderRequest{AmountCents: 1234, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "ord_1", order.OrderID)
	assert.Equal(t, "12.34", gotAmount)
}
