package callconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "callconfig:slot:"

// RedisRepo stores each slot as a single Redis string key.
// Slots have no TTL; a saved configuration lives until explicitly cleared.
type RedisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) *RedisRepo {
	return &RedisRepo{rdb: rdb}
}

func (r *RedisRepo) Put(ctx context.Context, slotID string, data []byte) error {
	if r.rdb == nil {
		return errors.New("callconfig: redis client is nil")
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+slotID, data, 0).Err(); err != nil {
		return fmt.Errorf("callconfig: redis set failed: %w", err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, slotID string) ([]byte, bool, error) {
	if r.rdb == nil {
		return nil, false, errors.New("callconfig: redis client is nil")
	}
	data, err := r.rdb.Get(ctx, redisKeyPrefix+slotID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("callconfig: redis get failed: %w", err)
	}
	return data, true, nil
}

func (r *RedisRepo) Delete(ctx context.Context, slotID string) error {
	if r.rdb == nil {
		return errors.New("callconfig: redis client is nil")
	}
	if err := r.rdb.Del(ctx, redisKeyPrefix+slotID).Err(); err != nil {
		return fmt.Errorf("callconfig: redis del failed: %w", err)
	}
	return nil
}
