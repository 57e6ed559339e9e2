package tests

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"checkout/internal/domain"
	"checkout/internal/service"
)

// ──────────────────────────────────────────────
// 3. PROOF SUBMISSION LIFECYCLE
// ──────────────────────────────────────────────

// proofFixture opens a session already sitting in the proof step with a
// pending QR payment.
func proofFixture(t *testing.T) (*fixture, *domain.CheckoutSession) {
	t.Helper()

	f := newFixture()
	f.storefront.Order = testOrder()
	f.storefront.Payment = &domain.Payment{
		ID:        "pay-qr",
		OrderID:   "order-1",
		Method:    domain.PaymentMethodQRCode,
		Status:    domain.PaymentStatusPending,
		QRPayload: "PP-1",
		CreatedAt: time.Now(),
	}

	session := f.openSession(t)
	ctx := context.Background()
	if _, err := f.checkout.SelectMethod(ctx, "cust-1", session.ID, domain.PaymentMethodQRCode); err != nil {
		t.Fatalf("select method: %v", err)
	}
	session, err := f.checkout.Submit(ctx, "tok", "cust-1", session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if session.Step != domain.StepProof {
		t.Fatalf("fixture should be in proof, got %s", session.Step)
	}
	return f, session
}

func pngSlip() service.Slip {
	return service.Slip{
		Filename:    "slip.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a},
	}
}

func TestSubmitSlip_RejectsNonImage(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)

	slip := pngSlip()
	slip.ContentType = "application/pdf"

	_, err := f.proof.SubmitSlip(context.Background(), "tok", "cust-1", session.ID, slip)
	if err != service.ErrSlipNotImage {
		t.Fatalf("expected ErrSlipNotImage, got %v", err)
	}
	if f.storefront.UploadSlipCallCount != 0 {
		t.Error("rejection must happen before any backend call")
	}
}

func TestSubmitSlip_RejectsOversized(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)

	slip := pngSlip()
	slip.Data = bytes.Repeat([]byte{0xff}, (5<<20)+1)

	_, err := f.proof.SubmitSlip(context.Background(), "tok", "cust-1", session.ID, slip)
	if err != service.ErrSlipTooLarge {
		t.Fatalf("expected ErrSlipTooLarge, got %v", err)
	}
	if f.storefront.UploadSlipCallCount != 0 {
		t.Error("rejection must happen before any backend call")
	}
}

func TestSubmitSlip_CompletedMovesToResult(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)
	ctx := context.Background()

	// Backend confirms the payment on upload.
	f.storefront.SetPayment(&domain.Payment{
		ID:      "pay-qr",
		Method:  domain.PaymentMethodQRCode,
		Status:  domain.PaymentStatusCompleted,
		SlipURL: "https://cdn.example.com/slips/pay-qr.png",
	})

	session, err := f.proof.SubmitSlip(ctx, "tok", "cust-1", session.ID, pngSlip())
	if err != nil {
		t.Fatalf("submit slip: %v", err)
	}

	if session.Step != domain.StepResult {
		t.Errorf("step = %s, want result after completion", session.Step)
	}
	if session.Payment.Status != domain.PaymentStatusCompleted {
		t.Errorf("status = %s, want completed", session.Payment.Status)
	}
	if session.SlipPreview == "" || !strings.HasPrefix(session.SlipPreview, "data:image/png;base64,") {
		t.Errorf("expected data-URI preview, got %q", session.SlipPreview)
	}
	if f.storefront.UploadSlipCallCount != 1 {
		t.Errorf("upload count = %d, want 1", f.storefront.UploadSlipCallCount)
	}
}

func TestSubmitSlip_PendingStaysInProof(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)

	// Upload accepted but confirmation is still outstanding.
	f.storefront.SetPayment(&domain.Payment{
		ID:      "pay-qr",
		Method:  domain.PaymentMethodQRCode,
		Status:  domain.PaymentStatusPending,
		SlipURL: "https://cdn.example.com/slips/pay-qr.png",
	})

	session, err := f.proof.SubmitSlip(context.Background(), "tok", "cust-1", session.ID, pngSlip())
	if err != nil {
		t.Fatalf("submit slip: %v", err)
	}

	if session.Step != domain.StepProof {
		t.Errorf("step = %s, want proof while pending", session.Step)
	}
	if session.Payment.SlipURL == "" {
		t.Error("slip reference from the backend must be kept")
	}
}

func TestRefresh_PicksUpAsyncCompletion(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)
	ctx := context.Background()

	// The bank confirmed out of band; a manual refresh discovers it.
	f.storefront.SetPayment(&domain.Payment{
		ID:     "pay-qr",
		Method: domain.PaymentMethodQRCode,
		Status: domain.PaymentStatusCompleted,
	})

	session, err := f.proof.Refresh(ctx, "tok", "cust-1", session.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if session.Step != domain.StepResult {
		t.Errorf("step = %s, want result", session.Step)
	}
	if f.storefront.GetPaymentCallCount != 1 {
		t.Errorf("refresh must fetch the payment, count = %d", f.storefront.GetPaymentCallCount)
	}
	if f.storefront.UploadSlipCallCount != 0 {
		t.Error("refresh must not upload anything")
	}
}

func TestSubmitSlip_NoOpOnceCompleted(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)
	ctx := context.Background()

	f.storefront.SetPayment(&domain.Payment{
		ID:     "pay-qr",
		Method: domain.PaymentMethodQRCode,
		Status: domain.PaymentStatusCompleted,
	})
	session, err := f.proof.SubmitSlip(ctx, "tok", "cust-1", session.ID, pngSlip())
	if err != nil {
		t.Fatalf("submit slip: %v", err)
	}
	if session.Step != domain.StepResult {
		t.Fatalf("step = %s, want result", session.Step)
	}

	// Further invocations change nothing and cause no new uploads.
	again, err := f.proof.SubmitSlip(ctx, "tok", "cust-1", session.ID, pngSlip())
	if err != nil {
		t.Fatalf("repeat submit slip: %v", err)
	}
	if again.Step != domain.StepResult || again.Payment.Status != domain.PaymentStatusCompleted {
		t.Error("repeat submission must be a no-op")
	}
	if f.storefront.UploadSlipCallCount != 1 {
		t.Errorf("upload count = %d, want 1 after repeat", f.storefront.UploadSlipCallCount)
	}

	if _, err := f.proof.Refresh(ctx, "tok", "cust-1", session.ID); err != nil {
		t.Fatalf("refresh after completion: %v", err)
	}
	if f.storefront.GetPaymentCallCount != 0 {
		t.Error("refresh after completion must not hit the backend")
	}
}

func TestSubmitSlip_UploadErrorKeepsProofStep(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)

	f.storefront.UploadSlipError = context.DeadlineExceeded

	_, err := f.proof.SubmitSlip(context.Background(), "tok", "cust-1", session.ID, pngSlip())
	if err == nil {
		t.Fatal("expected upload error")
	}

	stored := f.sessions.Stored(session.ID)
	if stored.Step != domain.StepProof {
		t.Errorf("step = %s, want proof preserved after failure", stored.Step)
	}
	if stored.UploadInFlight {
		t.Error("in-flight flag must be rolled back after failure")
	}
}

func TestSubmitSlip_DuplicateWhileUploadInFlight(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)

	f.locks.Hold("upload:" + session.ID)

	_, err := f.proof.SubmitSlip(context.Background(), "tok", "cust-1", session.ID, pngSlip())
	if err != service.ErrSubmissionInFlight {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if f.storefront.UploadSlipCallCount != 0 {
		t.Error("no upload may start while another is in flight")
	}
}

func TestCountdown_StartsAndStops(t *testing.T) {
	t.Parallel()

	f, session := proofFixture(t)

	deadline := session.ProofExpiresAt
	remaining := f.countdowns.Remaining(session.ID, deadline)
	if remaining <= 14*60 || remaining > 15*60 {
		t.Errorf("remaining = %d, want close to the full 15 minute window", remaining)
	}

	// Leaving the proof step stops the ticker; remaining falls back to
	// the deadline for display.
	if _, err := f.checkout.Back(context.Background(), "cust-1", session.ID); err != nil {
		t.Fatalf("back: %v", err)
	}
	if got := f.countdowns.Remaining(session.ID, time.Time{}); got != 0 {
		t.Errorf("remaining after teardown = %d, want 0", got)
	}
}
