package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockPrefix = "mutation-lock:"

// LockRepository implements short-lived mutation locks with SET NX.
type LockRepository struct {
	client *redis.Client
}

// NewLockRepository constructs a lock repository.
func NewLockRepository(client *redis.Client) *LockRepository {
	return &LockRepository{client: client}
}

// Acquire takes key for ttl. It returns false when someone else holds it.
func (r *LockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, lockPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// Release drops key.
func (r *LockRepository) Release(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, lockPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
