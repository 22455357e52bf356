package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PayPalProvider talks to the PayPal Checkout Orders v2 API. PayPal expects
// amounts in major units ("10.00"), so minor units are converted on the way
// out. A fresh OAuth token is fetched per call.
type PayPalProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	client       *http.Client
}

func NewPayPalProvider(baseURL, clientID, clientSecret string) *PayPalProvider {
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	return &PayPalProvider{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PayPalProvider) Name() string { return "paypal" }

func (p *PayPalProvider) getToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.ClientID, p.ClientSecret)
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token: %d", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// majorUnits renders minor units as "12.34" for PayPal.
func majorUnits(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id,omitempty"`
	Amount      paypalAmount `json:"amount"`
	Description string       `json:"description,omitempty"`
}

type paypalOrderReq struct {
	Intent        string               `json:"intent"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
}

func (p *PayPalProvider) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("paypal auth: %w", err)
	}
	payload := paypalOrderReq{
		Intent: "CAPTURE",
		PurchaseUnits: []paypalPurchaseUnit{{
			ReferenceID: req.Receipt,
			Amount:      paypalAmount{CurrencyCode: req.Currency, Value: majorUnits(req.AmountCents)},
			Description: req.Description,
		}},
	}
	body, _ := json.Marshal(payload)

	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[paypal] order create status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("paypal order create: %d", resp.StatusCode)
	}
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &Order{OrderID: out.ID, Amount: req.AmountCents, Currency: req.Currency}, nil
}

// Capture asks PayPal to capture the approved order. INSTRUMENT_DECLINED maps
// to ErrDeclined so callers can mark the purchase failed without treating it
// as a system fault.
func (p *PayPalProvider) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("paypal auth: %w", err)
	}
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/v2/checkout/orders/"+req.OrderID+"/capture", bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnprocessableEntity && bytes.Contains(respBody, []byte("INSTRUMENT_DECLINED")) {
		return nil, ErrDeclined
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[paypal] capture status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("paypal capture: %d", resp.StatusCode)
	}
	var out struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	captureID := out.ID
	if len(out.PurchaseUnits) > 0 && len(out.PurchaseUnits[0].Payments.Captures) > 0 {
		captureID = out.PurchaseUnits[0].Payments.Captures[0].ID
	}
	if out.Status != "COMPLETED" {
		return nil, ErrDeclined
	}
	return &CaptureResult{PaymentID: captureID, Status: "COMPLETED"}, nil
}
