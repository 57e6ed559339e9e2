package domain

import "time"

// Step is the checkout session's current screen.
type Step string

const (
	StepSelect Step = "select"
	StepProof  Step = "proof"
	StepResult Step = "result"
)

// stepTransitions lists the allowed forward moves. "back" and "retry"
// return to select from any step and are always permitted.
var stepTransitions = map[Step][]Step{
	StepSelect: {StepProof, StepResult},
	StepProof:  {StepResult},
	StepResult: {},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Step) CanTransitionTo(next Step) bool {
	if next == StepSelect {
		return true
	}
	for _, t := range stepTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// CardSummary is the masked card data forwarded to the backend.
// The full PAN and the CVC never leave the validator.
type CardSummary struct {
	LastFour string
	Expiry   string
}

// Totals is the displayed price breakdown for a checkout session.
// Subtotal and Discount are informational; Total is what gets charged.
type Totals struct {
	Subtotal    float64
	Discount    float64
	ShippingFee float64
	Total       float64
}

// ComputeTotals derives the displayed totals. The discount is already
// baked into CartTotal server-side, so the total never subtracts it
// again. When line items are absent the subtotal falls back to
// CartTotal + DiscountAmount, preserving the backend's pricing
// convention.
func ComputeTotals(o *Order, shipping ShippingOption) Totals {
	subtotal := 0.0
	if len(o.Items) > 0 {
		for _, it := range o.Items {
			subtotal += it.UnitPrice * float64(it.Quantity)
		}
	} else {
		subtotal = o.CartTotal + o.DiscountAmount
	}

	return Totals{
		Subtotal:    subtotal,
		Discount:    o.DiscountAmount,
		ShippingFee: shipping.Fee,
		Total:       o.CartTotal + shipping.Fee,
	}
}

// CheckoutSession is the ephemeral per-tab checkout state for one order.
// It is created when the checkout screen mounts and discarded on
// navigation away.
type CheckoutSession struct {
	ID         string
	OrderID    string
	CustomerID string

	Step             Step
	Method           PaymentMethod
	ShippingOptionID string
	Note             string

	CardValid bool
	Card      *CardSummary

	SlipName    string
	SlipPreview string

	Payment        *Payment
	ProofExpiresAt time.Time

	SubmitInFlight bool
	UploadInFlight bool

	// Revision guards against applying a stale backend response after
	// the user has already left the step that initiated the call.
	Revision int64

	Order *Order

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SelectedShipping resolves the session's shipping option, defaulting to
// the first available option when none was chosen yet.
func (s *CheckoutSession) SelectedShipping() ShippingOption {
	if opt, ok := ShippingOptionByID(s.ShippingOptionID); ok {
		return opt
	}
	return ShippingOptions()[0]
}

// Totals computes the session's current price breakdown.
func (s *CheckoutSession) Totals() Totals {
	if s.Order == nil {
		return Totals{}
	}
	return ComputeTotals(s.Order, s.SelectedShipping())
}

// ResetSelection clears method, card, shipping and payment state,
// returning the session to its initial select step.
func (s *CheckoutSession) ResetSelection() {
	s.Step = StepSelect
	s.Method = ""
	s.ShippingOptionID = ""
	s.Note = ""
	s.CardValid = false
	s.Card = nil
	s.SlipName = ""
	s.SlipPreview = ""
	s.Payment = nil
	s.ProofExpiresAt = time.Time{}
	s.SubmitInFlight = false
	s.UploadInFlight = false
}
