package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// RazorpayProvider talks to the Razorpay Orders API. Amounts are sent in
// minor units (paise). Capture is client-side in Razorpay's flow, so our
// Capture verifies the checkout proof: HMAC-SHA256(order_id|payment_id)
// under the key secret.
type RazorpayProvider struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	client    *http.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{
		BaseURL:   "https://api.razorpay.com",
		KeyID:     keyID,
		KeySecret: keySecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *RazorpayProvider) Name() string { return "razorpay" }

type razorpayOrderReq struct {
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	body, _ := json.Marshal(razorpayOrderReq{
		Amount:   req.AmountCents,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.SetBasicAuth(p.KeyID, p.KeySecret)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("[razorpay] order create status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("razorpay order create: %d", resp.StatusCode)
	}
	var out razorpayOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &Order{
		OrderID:  out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		KeyID:    p.KeyID,
	}, nil
}

// Capture verifies the client checkout proof. Razorpay auto-captures the
// payment; we only confirm the signature binds this payment to this order.
func (p *RazorpayProvider) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	if req.PaymentID == "" || req.Signature == "" {
		return nil, ErrBadSignature
	}
	payload := []byte(req.OrderID + "|" + req.PaymentID)
	if !VerifyWebhookSignature(payload, req.Signature, p.KeySecret) {
		return nil, ErrBadSignature
	}
	return &CaptureResult{PaymentID: req.PaymentID, Status: "COMPLETED"}, nil
}
