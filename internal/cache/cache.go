package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ugc-marketplace-backend/internal/logger"
)

const keyPrefix = "ugc"

// Key joins parts into a namespaced key: ugc:analytics:instagram:handle
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// Cache stores JSON documents with a TTL
type Cache interface {
	// GetJSON decodes the value at key into dest; found is false on a miss.
	GetJSON(ctx context.Context, key string, dest any) (found bool, err error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RateLimiter counts hits in fixed windows
type RateLimiter interface {
	// Allow records a hit for key and reports whether it is within limit for the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedisStore implements Cache and RateLimiter on a redis client
type RedisStore struct {
	rdb *redis.Client
}

// NewRedis returns a Cache and RateLimiter backed by one redis client
func NewRedis(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Connect dials redis and pings it
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *RedisStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Dropping undecodable cache entry", "key", key, "error", err)
		_ = s.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Allow uses INCR on a per-window key and sets the expiry on the first hit.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucket := time.Now().UTC().Truncate(window).Unix()
	windowKey := fmt.Sprintf("%s:%d", key, bucket)

	n, err := s.rdb.Incr(ctx, windowKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		_ = s.rdb.Expire(ctx, windowKey, window).Err()
	}
	return n <= int64(limit), nil
}
