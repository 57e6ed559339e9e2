package tests

import (
	"testing"
	"time"

	"checkout/internal/domain"
)

// ──────────────────────────────────────────────
// 2. RECOVERY OF PENDING QR PAYMENTS ON MOUNT
// ──────────────────────────────────────────────

func TestOpen_ResumesPendingQRPayment(t *testing.T) {
	t.Parallel()

	f := newFixture()
	order := testOrder()
	order.Payments = []domain.Payment{
		{
			ID:        "pay-existing",
			OrderID:   "order-1",
			Method:    domain.PaymentMethodQRCode,
			Status:    domain.PaymentStatusPending,
			QRPayload: "PP-EXISTING",
			CreatedAt: time.Now().Add(-2 * time.Minute),
		},
	}
	f.storefront.Order = order

	session := f.openSession(t)

	if session.Step != domain.StepProof {
		t.Fatalf("step = %s, want proof on recovery", session.Step)
	}
	if session.Payment == nil || session.Payment.ID != "pay-existing" {
		t.Fatalf("expected resumed payment pay-existing, got %+v", session.Payment)
	}
	if session.Method != domain.PaymentMethodQRCode {
		t.Errorf("method = %s, want qr_code", session.Method)
	}

	// No new payment intent may be created for the order.
	if f.storefront.CreatePaymentCallCount != 0 {
		t.Error("recovery must not create a new payment")
	}

	// The resumed countdown is anchored at the payment's creation, so
	// roughly two minutes are already gone from the 15 minute window.
	remaining := f.countdowns.Remaining(session.ID, session.ProofExpiresAt)
	if remaining <= 0 || remaining > 13*60 {
		t.Errorf("remaining = %d, want within the resumed window", remaining)
	}
}

func TestOpen_IgnoresSettledPayments(t *testing.T) {
	t.Parallel()

	f := newFixture()
	order := testOrder()
	order.Payments = []domain.Payment{
		{ID: "pay-a", Method: domain.PaymentMethodQRCode, Status: domain.PaymentStatusFailed},
		{ID: "pay-b", Method: domain.PaymentMethodCash, Status: domain.PaymentStatusPending},
	}
	f.storefront.Order = order

	session := f.openSession(t)

	if session.Step != domain.StepSelect {
		t.Errorf("step = %s, want select: only pending QR payments resume", session.Step)
	}
	if session.Payment != nil {
		t.Error("no payment may be attached when nothing is resumable")
	}
}
