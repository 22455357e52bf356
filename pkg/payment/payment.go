package payment

import (
	"context"
	"errors"
)

var (
	// ErrDeclined means the provider refused the capture; the buyer may retry
	// with a fresh order.
	ErrDeclined = errors.New("payment declined by provider")
	// ErrBadSignature means the client-supplied capture proof did not verify.
	ErrBadSignature = errors.New("payment signature verification failed")
)

type OrderRequest struct {
	AmountCents int64 // always minor units; providers convert as needed
	Currency    string
	Receipt     string // our reference, echoed back by the provider
	Description string
}

type Order struct {
	OrderID  string
	Amount   int64 // minor units
	Currency string
	KeyID    string // public key for client-side checkout, if the provider has one
}

type CaptureRequest struct {
	OrderID   string
	PaymentID string // provider payment id from the client, if the flow supplies one
	Signature string // client-side capture proof, if the flow supplies one
}

type CaptureResult struct {
	PaymentID string
	Status    string // COMPLETED
}

// Provider is a payment gateway: creates provider-side orders and finalizes
// captures. Implementations are plain HTTP clients.
type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}
