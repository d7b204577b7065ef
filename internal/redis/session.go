package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore reads authenticated sessions from Redis, keyed by session
// token. Sessions are written by the authentication service; this service
// only resolves and terminates them.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

const sessionKeyPrefix = "session:"

// sessionRecord is the stored session payload, as written by the
// authentication service.
type sessionRecord struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserID resolves a session token to the owning user. A missing or expired
// session yields empty string with no error.
func (s *SessionStore) UserID(ctx context.Context, token string) (string, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return "", err
	}
	return record.UserID, nil
}

// Delete removes a session, forcing re-authentication.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}
