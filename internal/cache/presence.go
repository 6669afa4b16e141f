package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// presenceTTL bounds how long a stale online marker can outlive a process
// that died without unregistering.
const presenceTTL = 24 * time.Hour

// PresenceStore mirrors live-connection state into Redis so HTTP handlers
// can answer "is this user online" without touching the registry.
type PresenceStore struct {
	client *redis.Client
}

// NewPresenceStore wraps a connected client.
func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

func presenceKey(userID string) string {
	return fmt.Sprintf("presence:user:%s", userID)
}

// SetOnline marks the user as having a live connection.
func (s *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Set(ctx, presenceKey(userID), "1", presenceTTL).Err()
}

// SetOffline clears the online marker.
func (s *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, presenceKey(userID)).Err()
}

// IsOnline reports whether the user currently has a live connection.
func (s *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
