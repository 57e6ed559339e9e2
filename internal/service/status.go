package service

import "checkout/internal/domain"

// StatusAction is a user action available in a given payment state.
type StatusAction string

const (
	ActionViewOrders       StatusAction = "view_orders"
	ActionContinueShopping StatusAction = "continue_shopping"
	ActionBack             StatusAction = "back"
	ActionRetry            StatusAction = "retry"
)

// StatusView is the user-facing presentation of a payment's status: a
// headline, a display tone, and the actions enabled in that state.
type StatusView struct {
	Status   domain.PaymentStatus
	Headline string
	Tone     string
	Actions  []StatusAction
}

// PresentStatus maps a payment's status to its presentation. It is a
// pure read-only view: no action here mutates payment state, and there
// is no way out of failed back to completed except a fresh submission.
func PresentStatus(p *domain.Payment) StatusView {
	if p == nil {
		return StatusView{}
	}

	switch p.Status {
	case domain.PaymentStatusCompleted:
		return StatusView{
			Status:   p.Status,
			Headline: "Payment successful",
			Tone:     "success",
			Actions:  []StatusAction{ActionViewOrders, ActionContinueShopping},
		}
	case domain.PaymentStatusFailed:
		return StatusView{
			Status:   p.Status,
			Headline: "Payment failed",
			Tone:     "error",
			Actions:  []StatusAction{ActionRetry, ActionBack},
		}
	default:
		return StatusView{
			Status:   domain.PaymentStatusPending,
			Headline: "Waiting for payment confirmation",
			Tone:     "info",
			Actions:  []StatusAction{ActionBack},
		}
	}
}
