package domain

import "time"

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodQRCode     PaymentMethod = "qr_code"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodQRCode:
		return true
	}
	return false
}

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// CanTransitionTo reports whether a status change is allowed.
// Transitions are one-way: pending may become completed or failed;
// terminal statuses never change again.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	return s == PaymentStatusPending &&
		(next == PaymentStatusCompleted || next == PaymentStatusFailed)
}

// Terminal reports whether the status will never change again.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// Payment is the client-side view of a payment record. The authoritative
// copy lives in the storefront backend; this one is a cache to be
// refreshed, never ground truth.
type Payment struct {
	ID             string
	OrderID        string
	Method         PaymentMethod
	Amount         float64
	Status         PaymentStatus
	TransactionRef string
	QRPayload      string
	SlipURL        string
	CreatedAt      time.Time
}
