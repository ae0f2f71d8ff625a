package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	keyPrefix = "shop:idem:order:"
	pending   = "pending"

	// pendingTTL caps how long a crashed request can hold a key.
	pendingTTL = time.Minute
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return keyPrefix + key
}

// Reserve claims key with SETNX. When the key is taken it reports the recorded order, or
// uuid.Nil while the holder has not completed yet.
func (s *RedisStore) Reserve(ctx context.Context, key string) (bool, uuid.UUID, error) {
	ok, err := s.client.SetNX(ctx, redisKey(key), pending, pendingTTL).Result()
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return true, uuid.Nil, nil
	}

	val, err := s.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// released between the two calls
		return false, uuid.Nil, nil
	}
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("redis get: %w", err)
	}
	if val == pending {
		return false, uuid.Nil, nil
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("corrupt idempotency value %q: %w", val, err)
	}
	return false, id, nil
}

// Complete binds key to orderID for the configured TTL.
func (s *RedisStore) Complete(ctx context.Context, key string, orderID uuid.UUID) error {
	if err := s.client.Set(ctx, redisKey(key), orderID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Release drops a reservation that never produced an order. Completed keys are kept.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, s.client, []string{redisKey(key)}, pending).Err(); err != nil {
		return fmt.Errorf("redis release: %w", err)
	}
	return nil
}
