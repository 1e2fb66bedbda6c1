package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis SETNX, following the
// packfinderz-backend idempotency-cache pattern (pkg/redis.Client.SetNX):
// the first writer under a key wins, later writers see the winning value.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore wraps an already-connected client. ttl bounds how long a
// step's result stays deduplicated; after it expires a retried step would
// call the external service again, which is safe because the reference
// services are themselves idempotent per key while the key is live, and
// the saga's own event log is still checked before falling back to a
// fresh call.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "ordercore:saga:idempotency:"}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	ok, err := s.client.SetNX(ctx, s.prefix+key, value, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		// Someone else won the race; leave their value in place.
		return nil
	}
	return nil
}
