package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for in-flight submission locks.
type LockStoreInterface interface {
	AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, sessionID string) error
	AcquireUploadLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseUploadLock(ctx context.Context, sessionID string) error
}

// Ensure concrete types implement interfaces.
var _ LockStoreInterface = (*LockStore)(nil)
