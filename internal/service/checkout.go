package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"checkout/internal/card"
	"checkout/internal/domain"
	"checkout/internal/gateway"
	"checkout/internal/redis"
	"checkout/internal/repository"
)

// submitLockTTL bounds how long an in-flight lock can outlive a crashed
// request.
const submitLockTTL = 30 * time.Second

// CheckoutService owns the checkout session state machine: method and
// shipping selection, card validation gating, payment submission, and
// the select/proof/result transitions.
type CheckoutService struct {
	sessions   repository.SessionRepository
	locks      redis.LockStoreInterface
	store      gateway.Storefront
	countdowns *CountdownRegistry

	proofWindow time.Duration
	logger      *slog.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	sessions repository.SessionRepository,
	locks redis.LockStoreInterface,
	store gateway.Storefront,
	countdowns *CountdownRegistry,
	proofWindow time.Duration,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions:    sessions,
		locks:       locks,
		store:       store,
		countdowns:  countdowns,
		proofWindow: proofWindow,
		logger:      logger,
	}
}

// Open mounts a checkout session for an order. It always fetches the
// order first: when the order already has a pending QR payment the
// session resumes it and starts directly in the proof step, so no
// duplicate payment intent is created. This recovery check completes
// before the session becomes available for a fresh submission.
func (s *CheckoutService) Open(ctx context.Context, token, customerID, orderID string) (*domain.CheckoutSession, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := s.store.GetOrder(ctx, token, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}

	now := time.Now()
	session := &domain.CheckoutSession{
		ID:         uuid.New().String(),
		OrderID:    orderID,
		CustomerID: customerID,
		Step:       domain.StepSelect,
		Order:      order,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if pending := order.PendingQRPayment(); pending != nil {
		session.Step = domain.StepProof
		session.Method = domain.PaymentMethodQRCode
		session.Payment = pending
		session.ProofExpiresAt = pending.CreatedAt.Add(s.proofWindow)
		s.logger.Info("resuming pending QR payment",
			"order_id", orderID, "payment_id", pending.ID)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if session.Step == domain.StepProof {
		s.countdowns.Start(session.ID, session.ProofExpiresAt)
	}

	return session, nil
}

// Get returns the customer's session.
func (s *CheckoutService) Get(ctx context.Context, customerID, sessionID string) (*domain.CheckoutSession, error) {
	return s.load(ctx, customerID, sessionID)
}

// SelectMethod chooses the payment method. Only one method may be
// selected at a time; selecting is only allowed in the select step.
func (s *CheckoutService) SelectMethod(ctx context.Context, customerID, sessionID string, method domain.PaymentMethod) (*domain.CheckoutSession, error) {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepSelect {
		return nil, ErrInvalidTransition
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	session.Method = method
	if method != domain.PaymentMethodCreditCard {
		session.CardValid = false
		session.Card = nil
	}
	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectShipping chooses a shipping option from the fixed set.
func (s *CheckoutService) SelectShipping(ctx context.Context, customerID, sessionID, optionID string) (*domain.CheckoutSession, error) {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepSelect {
		return nil, ErrInvalidTransition
	}
	if _, ok := domain.ShippingOptionByID(optionID); !ok {
		return nil, ErrInvalidShippingOption
	}

	session.ShippingOptionID = optionID
	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, err
	}
	return session, nil
}

// SetCard re-validates the card input and updates the session's submit
// gate. Only the aggregate validity and the masked summary (last four
// digits, expiry) are stored; the PAN and CVC are discarded here.
func (s *CheckoutService) SetCard(ctx context.Context, customerID, sessionID string, input card.Input) (*domain.CheckoutSession, card.Result, error) {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return nil, card.Result{}, err
	}
	if session.Step != domain.StepSelect {
		return nil, card.Result{}, ErrInvalidTransition
	}

	result := card.Validate(input, time.Now())
	session.CardValid = result.Valid
	if result.Valid {
		session.Card = &domain.CardSummary{
			LastFour: card.LastFour(input.Number),
			Expiry:   input.Expiry,
		}
	} else {
		session.Card = nil
	}

	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, card.Result{}, err
	}
	return session, result, nil
}

// SetNote stores the customer's free-text note.
func (s *CheckoutService) SetNote(ctx context.Context, customerID, sessionID, note string) (*domain.CheckoutSession, error) {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepSelect {
		return nil, ErrInvalidTransition
	}

	session.Note = note
	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit creates the payment with the backend. QR payments move the
// session to proof; cash and credit card go straight to result. A failed
// submission leaves the session in select with no partial payment so the
// customer can correct inputs and resubmit.
func (s *CheckoutService) Submit(ctx context.Context, token, customerID, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != domain.StepSelect {
		return nil, ErrInvalidTransition
	}
	if session.Method == "" {
		return nil, ErrNoMethodSelected
	}
	if session.Method == domain.PaymentMethodCreditCard && !session.CardValid {
		return nil, ErrCardInvalid
	}
	if session.SubmitInFlight {
		return nil, ErrSubmissionInFlight
	}

	ok, err := s.locks.AcquireSubmitLock(ctx, sessionID, submitLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	defer func() {
		if err := s.locks.ReleaseSubmitLock(ctx, sessionID); err != nil {
			s.logger.Warn("release submit lock", "session_id", sessionID, "err", err)
		}
	}()

	// Mark the submission in flight so the submit control stays disabled
	// while the backend call runs.
	session.SubmitInFlight = true
	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, err
	}

	totals := session.Totals()
	req := gateway.CreatePaymentRequest{
		OrderID:          session.OrderID,
		Method:           session.Method,
		Amount:           totals.Total,
		ShippingFee:      totals.ShippingFee,
		ShippingOptionID: session.SelectedShipping().ID,
		Note:             session.Note,
	}
	if session.Method == domain.PaymentMethodCreditCard && session.Card != nil {
		req.CardLastFour = session.Card.LastFour
		req.CardExpiry = session.Card.Expiry
	}

	payment, submitErr := s.store.CreatePayment(ctx, token, req)

	// Re-read before applying: the customer may have navigated away or
	// reset the session while the call was in flight.
	current, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, ErrStaleSession
	}
	if current.Revision != session.Revision || current.Step != domain.StepSelect {
		return nil, ErrStaleSession
	}

	// A QR payment the customer cannot scan is no payment at all: treat a
	// missing payload as a failed submission.
	if submitErr == nil && session.Method == domain.PaymentMethodQRCode && payment.QRPayload == "" {
		submitErr = ErrQRCodeUnavailable
	}

	if submitErr != nil {
		current.SubmitInFlight = false
		if err := s.sessions.Save(ctx, current, current.Revision); err != nil {
			s.logger.Warn("rollback after failed submission", "session_id", sessionID, "err", err)
		}
		return nil, submitErr
	}

	current.SubmitInFlight = false
	current.Payment = payment
	if session.Method == domain.PaymentMethodQRCode {
		current.Step = domain.StepProof
		current.ProofExpiresAt = time.Now().Add(s.proofWindow)
	} else {
		current.Step = domain.StepResult
	}

	if err := s.sessions.Save(ctx, current, current.Revision); err != nil {
		return nil, err
	}

	if current.Step == domain.StepProof {
		s.countdowns.Start(current.ID, current.ProofExpiresAt)
	}

	s.logger.Info("payment submitted",
		"session_id", sessionID, "order_id", session.OrderID,
		"method", session.Method, "payment_id", payment.ID, "step", current.Step)

	return current, nil
}

// Back returns to the select step from any step, discarding the local
// payment reference. The payment is not cancelled server-side.
func (s *CheckoutService) Back(ctx context.Context, customerID, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}

	s.countdowns.Stop(sessionID)
	session.Step = domain.StepSelect
	session.Payment = nil
	session.ProofExpiresAt = time.Time{}
	session.SubmitInFlight = false
	session.UploadInFlight = false
	session.SlipName = ""
	session.SlipPreview = ""

	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, err
	}
	return session, nil
}

// Retry resets the whole session to its initial select state, clearing
// method, card and shipping selections. Used after a failed payment; a
// fresh submission creates a new payment.
func (s *CheckoutService) Retry(ctx context.Context, customerID, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}

	s.countdowns.Stop(sessionID)
	session.ResetSelection()

	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, err
	}
	return session, nil
}

// Close tears down a session on navigation away, stopping its countdown.
func (s *CheckoutService) Close(ctx context.Context, customerID, sessionID string) error {
	session, err := s.load(ctx, customerID, sessionID)
	if err != nil {
		return err
	}

	s.countdowns.Stop(session.ID)
	return s.sessions.Delete(ctx, session.ID)
}

func (s *CheckoutService) load(ctx context.Context, customerID, sessionID string) (*domain.CheckoutSession, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if customerID != "" && session.CustomerID != customerID {
		return nil, ErrSessionOwnership
	}
	return session, nil
}
