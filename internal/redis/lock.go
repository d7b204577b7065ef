package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// releaseScript deletes the lock only when it still holds the caller's token,
// so a late release cannot free a lock a newer attempt re-acquired after TTL
// expiry.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// AcquireBookingLock attempts to acquire the payment lock for a booking.
// Returns the owner token on success, empty string if a payment is already in
// flight. The TTL frees the lock when an abandoned widget never resumes.
func (s *LockStore) AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (string, error) {
	key := fmt.Sprintf("lock:booking:%s", bookingID)
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	return token, nil
}

// ReleaseBookingLock releases the payment lock for a booking, but only when
// token still owns it.
func (s *LockStore) ReleaseBookingLock(ctx context.Context, bookingID, token string) error {
	key := fmt.Sprintf("lock:booking:%s", bookingID)

	return releaseScript.Run(ctx, s.client, []string{key}, token).Err()
}
