package handler

import (
	"time"

	"checkout/internal/domain"
	"checkout/internal/service"
)

// SessionResponse is the session snapshot returned by every checkout
// endpoint: the whole screen state the UI renders from.
type SessionResponse struct {
	ID               string                   `json:"id"`
	OrderID          string                   `json:"order_id"`
	Step             string                   `json:"step"`
	Method           string                   `json:"method,omitempty"`
	ShippingOptionID string                   `json:"shipping_option_id,omitempty"`
	Note             string                   `json:"note,omitempty"`
	CardValid        bool                     `json:"card_valid"`
	CardLastFour     string                   `json:"card_last_four,omitempty"`
	CardExpiry       string                   `json:"card_expiry,omitempty"`
	SlipName         string                   `json:"slip_name,omitempty"`
	SlipPreview      string                   `json:"slip_preview,omitempty"`
	Totals           TotalsResponse           `json:"totals"`
	Payment          *PaymentResponse         `json:"payment,omitempty"`
	Status           *StatusResponse          `json:"status,omitempty"`
	CountdownSeconds int64                    `json:"countdown_seconds"`
	SubmitEnabled    bool                     `json:"submit_enabled"`
	UploadEnabled    bool                     `json:"upload_enabled"`
	ShippingOptions  []ShippingOptionResponse `json:"shipping_options"`
}

// TotalsResponse is the displayed price breakdown.
type TotalsResponse struct {
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	ShippingFee float64 `json:"shipping_fee"`
	Total       float64 `json:"total"`
}

// PaymentResponse is the client-facing payment snapshot.
type PaymentResponse struct {
	ID             string    `json:"id"`
	Method         string    `json:"method"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status"`
	TransactionRef string    `json:"transaction_ref,omitempty"`
	QRPayload      string    `json:"qr_payload,omitempty"`
	SlipURL        string    `json:"slip_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StatusResponse is the presentation of the payment's status.
type StatusResponse struct {
	Status   string   `json:"status"`
	Headline string   `json:"headline"`
	Tone     string   `json:"tone"`
	Actions  []string `json:"actions"`
}

// ShippingOptionResponse is one available delivery choice.
type ShippingOptionResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Fee      float64 `json:"fee"`
	Estimate string  `json:"estimate"`
}

func toSessionResponse(s *domain.CheckoutSession, countdowns *service.CountdownRegistry) SessionResponse {
	totals := s.Totals()
	resp := SessionResponse{
		ID:               s.ID,
		OrderID:          s.OrderID,
		Step:             string(s.Step),
		Method:           string(s.Method),
		ShippingOptionID: s.ShippingOptionID,
		Note:             s.Note,
		CardValid:        s.CardValid,
		SlipName:         s.SlipName,
		SlipPreview:      s.SlipPreview,
		Totals: TotalsResponse{
			Subtotal:    totals.Subtotal,
			Discount:    totals.Discount,
			ShippingFee: totals.ShippingFee,
			Total:       totals.Total,
		},
		SubmitEnabled: submitEnabled(s),
		UploadEnabled: uploadEnabled(s),
	}

	if s.Card != nil {
		resp.CardLastFour = s.Card.LastFour
		resp.CardExpiry = s.Card.Expiry
	}

	if s.Payment != nil {
		resp.Payment = &PaymentResponse{
			ID:             s.Payment.ID,
			Method:         string(s.Payment.Method),
			Amount:         s.Payment.Amount,
			Status:         string(s.Payment.Status),
			TransactionRef: s.Payment.TransactionRef,
			QRPayload:      s.Payment.QRPayload,
			SlipURL:        s.Payment.SlipURL,
			CreatedAt:      s.Payment.CreatedAt,
		}

		view := service.PresentStatus(s.Payment)
		actions := make([]string, 0, len(view.Actions))
		for _, a := range view.Actions {
			actions = append(actions, string(a))
		}
		resp.Status = &StatusResponse{
			Status:   string(view.Status),
			Headline: view.Headline,
			Tone:     view.Tone,
			Actions:  actions,
		}
	}

	if s.Step == domain.StepProof {
		resp.CountdownSeconds = countdowns.Remaining(s.ID, s.ProofExpiresAt)
	}

	for _, opt := range domain.ShippingOptions() {
		resp.ShippingOptions = append(resp.ShippingOptions, ShippingOptionResponse{
			ID:       opt.ID,
			Name:     opt.Name,
			Fee:      opt.Fee,
			Estimate: opt.Estimate,
		})
	}

	return resp
}

// submitEnabled mirrors the submit gate: a method is selected, nothing
// is in flight, and a credit card must have validated.
func submitEnabled(s *domain.CheckoutSession) bool {
	if s.Step != domain.StepSelect || s.Method == "" || s.SubmitInFlight {
		return false
	}
	if s.Method == domain.PaymentMethodCreditCard && !s.CardValid {
		return false
	}
	return true
}

// uploadEnabled reports whether the slip action is usable: proof step,
// nothing in flight, payment not yet completed.
func uploadEnabled(s *domain.CheckoutSession) bool {
	return s.Step == domain.StepProof &&
		!s.UploadInFlight &&
		s.Payment != nil &&
		s.Payment.Status == domain.PaymentStatusPending
}
