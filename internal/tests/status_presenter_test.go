package tests

import (
	"testing"

	"checkout/internal/domain"
	"checkout/internal/service"
)

// ──────────────────────────────────────────────
// 4. STATUS PRESENTATION
// ──────────────────────────────────────────────

func hasAction(actions []service.StatusAction, want service.StatusAction) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

func TestPresentStatus_Completed(t *testing.T) {
	t.Parallel()

	view := service.PresentStatus(&domain.Payment{Status: domain.PaymentStatusCompleted})

	if view.Tone != "success" {
		t.Errorf("tone = %s, want success", view.Tone)
	}
	if !hasAction(view.Actions, service.ActionViewOrders) || !hasAction(view.Actions, service.ActionContinueShopping) {
		t.Errorf("completed actions = %v, want view_orders and continue_shopping", view.Actions)
	}
	if hasAction(view.Actions, service.ActionRetry) {
		t.Error("completed state must not offer retry")
	}
}

func TestPresentStatus_Pending(t *testing.T) {
	t.Parallel()

	view := service.PresentStatus(&domain.Payment{Status: domain.PaymentStatusPending})

	if len(view.Actions) != 1 || view.Actions[0] != service.ActionBack {
		t.Errorf("pending actions = %v, want back only", view.Actions)
	}
}

func TestPresentStatus_Failed(t *testing.T) {
	t.Parallel()

	view := service.PresentStatus(&domain.Payment{Status: domain.PaymentStatusFailed})

	if view.Tone != "error" {
		t.Errorf("tone = %s, want error", view.Tone)
	}
	if !hasAction(view.Actions, service.ActionRetry) || !hasAction(view.Actions, service.ActionBack) {
		t.Errorf("failed actions = %v, want retry and back", view.Actions)
	}
	if hasAction(view.Actions, service.ActionViewOrders) {
		t.Error("failed state must not offer view_orders")
	}
}

func TestPresentStatus_NilPayment(t *testing.T) {
	t.Parallel()

	view := service.PresentStatus(nil)
	if len(view.Actions) != 0 || view.Headline != "" {
		t.Errorf("nil payment must present nothing, got %+v", view)
	}
}
