package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"checkout/internal/domain"
	"checkout/internal/gateway"
	"checkout/internal/redis"
	"checkout/internal/repository"
)

const uploadLockTTL = 30 * time.Second

// Slip is an uploaded proof-of-payment image.
type Slip struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProofService manages the QR payment proof lifecycle: slip acceptance
// and preview, upload to the backend, and manual status refresh.
type ProofService struct {
	sessions   repository.SessionRepository
	locks      redis.LockStoreInterface
	store      gateway.Storefront
	countdowns *CountdownRegistry

	maxSlipBytes int64
	logger       *slog.Logger
}

// NewProofService creates a new ProofService.
func NewProofService(
	sessions repository.SessionRepository,
	locks redis.LockStoreInterface,
	store gateway.Storefront,
	countdowns *CountdownRegistry,
	maxSlipBytes int64,
	logger *slog.Logger,
) *ProofService {
	return &ProofService{
		sessions:     sessions,
		locks:        locks,
		store:        store,
		countdowns:   countdowns,
		maxSlipBytes: maxSlipBytes,
		logger:       logger,
	}
}

// SubmitSlip validates and uploads a new slip image for the session's
// pending payment. Rejections (wrong type, too large) happen locally
// before any backend call. Once the payment is completed the call is a
// no-op.
func (s *ProofService) SubmitSlip(ctx context.Context, token, customerID, sessionID string, slip Slip) (*domain.CheckoutSession, error) {
	session, done, err := s.loadProof(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}
	if done {
		return session, nil
	}

	if !strings.HasPrefix(slip.ContentType, "image/") {
		return nil, ErrSlipNotImage
	}
	if int64(len(slip.Data)) > s.maxSlipBytes {
		return nil, ErrSlipTooLarge
	}
	if session.UploadInFlight {
		return nil, ErrSubmissionInFlight
	}

	ok, err := s.locks.AcquireUploadLock(ctx, sessionID, uploadLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	defer func() {
		if err := s.locks.ReleaseUploadLock(ctx, sessionID); err != nil {
			s.logger.Warn("release upload lock", "session_id", sessionID, "err", err)
		}
	}()

	// Accept the slip: record the name and a displayable preview before
	// contacting the backend.
	session.UploadInFlight = true
	session.SlipName = slip.Filename
	session.SlipPreview = "data:" + slip.ContentType + ";base64," +
		base64.StdEncoding.EncodeToString(slip.Data)
	if err := s.sessions.Save(ctx, session, session.Revision); err != nil {
		return nil, err
	}

	updated, uploadErr := s.store.UploadSlip(ctx, token, session.Payment.ID,
		slip.Filename, slip.ContentType, slip.Data)

	return s.apply(ctx, session, updated, uploadErr)
}

// Refresh re-fetches the payment by identifier to pick up an
// asynchronous status change. This is the submission path when no new
// file was chosen: a manual status re-check instead of an upload.
func (s *ProofService) Refresh(ctx context.Context, token, customerID, sessionID string) (*domain.CheckoutSession, error) {
	session, done, err := s.loadProof(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}
	if done {
		return session, nil
	}
	if session.UploadInFlight {
		return nil, ErrSubmissionInFlight
	}

	updated, refreshErr := s.store.GetPayment(ctx, token, session.Payment.ID)

	return s.apply(ctx, session, updated, refreshErr)
}

// apply installs the backend's updated payment on the session, guarding
// against the customer having left the proof step while the call was in
// flight, and against backward status transitions from a stale read.
func (s *ProofService) apply(ctx context.Context, before *domain.CheckoutSession, updated *domain.Payment, callErr error) (*domain.CheckoutSession, error) {
	current, err := s.sessions.Get(ctx, before.ID)
	if err != nil {
		return nil, ErrStaleSession
	}
	if current.Revision != before.Revision || current.Step != domain.StepProof {
		return nil, ErrStaleSession
	}

	if callErr != nil {
		if current.UploadInFlight {
			current.UploadInFlight = false
			if err := s.sessions.Save(ctx, current, current.Revision); err != nil {
				s.logger.Warn("rollback after failed upload", "session_id", current.ID, "err", err)
			}
		}
		return nil, callErr
	}

	if current.Payment != nil && !current.Payment.Status.CanTransitionTo(updated.Status) {
		updated.Status = current.Payment.Status
	}

	current.UploadInFlight = false
	current.Payment = updated

	if updated.Status != domain.PaymentStatusPending {
		s.countdowns.Stop(current.ID)
	}
	if updated.Status == domain.PaymentStatusCompleted {
		current.Step = domain.StepResult
	}

	if err := s.sessions.Save(ctx, current, current.Revision); err != nil {
		return nil, err
	}

	s.logger.Info("proof submission applied",
		"session_id", current.ID, "payment_id", updated.ID,
		"status", updated.Status, "step", current.Step)

	return current, nil
}

// loadProof fetches the session and decides whether the proof action may
// run. A payment that is already completed makes the action a no-op
// (done=true) rather than an error, so repeated invocations after
// completion change nothing.
func (s *ProofService) loadProof(ctx context.Context, customerID, sessionID string) (session *domain.CheckoutSession, done bool, err error) {
	if sessionID == "" {
		return nil, false, ErrInvalidSessionID
	}
	session, err = s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if customerID != "" && session.CustomerID != customerID {
		return nil, false, ErrSessionOwnership
	}
	if session.Payment != nil && session.Payment.Status == domain.PaymentStatusCompleted {
		return session, true, nil
	}
	if session.Step != domain.StepProof {
		return nil, false, ErrInvalidTransition
	}
	if session.Payment == nil {
		return nil, false, ErrNoPayment
	}
	return session, false, nil
}
