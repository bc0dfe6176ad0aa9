package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tenantcore/platform/internal/core/domain"
)

const challengeTTL = 5 * time.Minute

// ChallengeStore keeps pending two-factor logins in Redis.
// Key format: 2fa:challenge:<uuid> → user id
type ChallengeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChallengeStore creates a ChallengeStore wrapping the given Redis client.
func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client, ttl: challengeTTL}
}

// Save records a challenge for userID and returns its id.
func (s *ChallengeStore) Save(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, s.key(id), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("save challenge: %w", err)
	}
	return id, nil
}

// Consume atomically reads and deletes the challenge, so a code can complete
// a login only once.
func (s *ChallengeStore) Consume(ctx context.Context, challengeID string) (string, error) {
	if _, err := uuid.Parse(challengeID); err != nil {
		return "", domain.ErrChallengeNotFound
	}
	userID, err := s.client.GetDel(ctx, s.key(challengeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrChallengeNotFound
		}
		return "", fmt.Errorf("consume challenge: %w", err)
	}
	return userID, nil
}

func (s *ChallengeStore) key(id string) string {
	return "2fa:challenge:" + id
}
