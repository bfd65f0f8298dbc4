package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyRepository is the replay cache for gateway payment callbacks,
// keyed on the gateway payment id. It is best-effort: the durable guard is
// the order's payment state in Postgres.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, orderID string, ttl time.Duration) error
}

type RedisIdempotencyRepository struct {
	client *redis.Client
}

func NewRedisIdempotencyRepository(client *redis.Client) *RedisIdempotencyRepository {
	return &RedisIdempotencyRepository{client: client}
}

func (r *RedisIdempotencyRepository) getKey(key string) string {
	return "idem:payment:" + key
}

func (r *RedisIdempotencyRepository) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.getKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisIdempotencyRepository) Set(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.getKey(key), orderID, ttl).Err()
}
