package payment

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StubProvider is an in-memory provider for development and tests.
type StubProvider struct {
	ProviderName string
	FailCreate   bool
	DeclineAll   bool
	seq          atomic.Int64
}

func (s *StubProvider) Name() string {
	if s.ProviderName == "" {
		return "stub"
	}
	return s.ProviderName
}

func (s *StubProvider) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if s.FailCreate {
		return nil, fmt.Errorf("stub: order create failed")
	}
	return &Order{
		OrderID:  fmt.Sprintf("stub_order_%d", s.seq.Add(1)),
		Amount:   req.AmountCents,
		Currency: req.Currency,
		KeyID:    "stub_key",
	}, nil
}

func (s *StubProvider) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	if s.DeclineAll {
		return nil, ErrDeclined
	}
	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = "stub_pay_" + req.OrderID
	}
	return &CaptureResult{PaymentID: paymentID, Status: "COMPLETED"}, nil
}
