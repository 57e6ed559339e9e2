package repository

import (
	"context"

	"checkout/internal/domain"
)

// SessionRepository stores ephemeral checkout sessions. Sessions are
// TTL-scoped cache state: losing one only forces the customer to reopen
// checkout, so no durable store is involved.
type SessionRepository interface {
	// Get returns the session with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.CheckoutSession, error)

	// Create stores a new session at revision 1.
	Create(ctx context.Context, session *domain.CheckoutSession) error

	// Save persists the session if its stored revision still equals
	// expectedRevision, then bumps the revision. Returns
	// ErrRevisionConflict when another writer got there first; callers
	// use this to discard stale backend responses.
	Save(ctx context.Context, session *domain.CheckoutSession, expectedRevision int64) error

	// Delete removes the session. Deleting a missing session is not an
	// error.
	Delete(ctx context.Context, id string) error
}
