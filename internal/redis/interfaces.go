package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for per-booking payment locks.
// Acquire returns an owner token; release is a no-op unless the token still
// owns the lock.
type LockStoreInterface interface {
	AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (string, error)
	ReleaseBookingLock(ctx context.Context, bookingID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface = (*LockStore)(nil)
)
