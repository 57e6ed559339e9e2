package gateway

import (
	"context"
	"fmt"

	"checkout/internal/domain"
)

// Storefront is the backend order/payment API the checkout core talks to.
// Every call forwards the customer's bearer token; the backend is the
// authority for order and payment state.
type Storefront interface {
	GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error)
	CreatePayment(ctx context.Context, token string, req CreatePaymentRequest) (*domain.Payment, error)
	UploadSlip(ctx context.Context, token, paymentID, filename, contentType string, data []byte) (*domain.Payment, error)
	GetPayment(ctx context.Context, token, paymentID string) (*domain.Payment, error)
}

// CreatePaymentRequest carries everything the backend needs to open a
// payment. Card data is restricted to the masked summary: last four
// digits and expiry, never the full PAN or CVC.
type CreatePaymentRequest struct {
	OrderID          string
	Method           domain.PaymentMethod
	Amount           float64
	ShippingFee      float64
	ShippingOptionID string
	Note             string
	CardLastFour     string
	CardExpiry       string
}

// BackendError is a non-2xx response from the storefront backend. The
// server-supplied message, when present, is surfaced to the user.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("backend: status %d", e.StatusCode)
}
