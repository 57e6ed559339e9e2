package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles per-session in-flight locks in Redis. A lock is held
// for the duration of one backend call so the same session cannot issue
// duplicate submissions or uploads.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireSubmitLock attempts to acquire the payment-submission lock for
// the given session. Returns true if the lock was acquired, false if a
// submission is already in flight.
func (s *LockStore) AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:submit:%s", sessionID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseSubmitLock releases the submission lock for the given session.
func (s *LockStore) ReleaseSubmitLock(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf("lock:submit:%s", sessionID)

	return s.client.Del(ctx, key).Err()
}

// AcquireUploadLock attempts to acquire the slip-upload lock for the
// given session.
func (s *LockStore) AcquireUploadLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:upload:%s", sessionID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseUploadLock releases the slip-upload lock for the given session.
func (s *LockStore) ReleaseUploadLock(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf("lock:upload:%s", sessionID)

	return s.client.Del(ctx, key).Err()
}
