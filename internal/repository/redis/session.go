package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"checkout/internal/domain"
	"checkout/internal/repository"
)

const sessionKeyPrefix = "checkout:session:"

// SessionRepository stores checkout sessions as JSON values in Redis
// with a sliding TTL. Saves are optimistic: a WATCH on the session key
// plus a revision check detect concurrent writers.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a Redis-backed session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var session domain.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create stores a new session at revision 1.
func (r *SessionRepository) Create(ctx context.Context, session *domain.CheckoutSession) error {
	session.Revision = 1
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err()
}

// Save persists the session guarded by its revision.
func (r *SessionRepository) Save(ctx context.Context, session *domain.CheckoutSession, expectedRevision int64) error {
	key := sessionKey(session.ID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return repository.ErrNotFound
			}
			return err
		}

		var current domain.CheckoutSession
		if err := json.Unmarshal(data, &current); err != nil {
			return err
		}
		if current.Revision != expectedRevision {
			return repository.ErrRevisionConflict
		}

		session.Revision = expectedRevision + 1
		session.UpdatedAt = time.Now()
		next, err := json.Marshal(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return repository.ErrRevisionConflict
	}
	return err
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
