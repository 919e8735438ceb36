// Package cache provides Redis-backed caching for the news site.
// It runs against an embedded Redis (miniredis) unless an external server is configured.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/yanews/ya-news/logger"
)

var (
	// ErrNotInitialized is returned by every call made before InitRedis.
	ErrNotInitialized = errors.New("redis client not initialized")
	// ErrMiss is returned when a key does not exist.
	ErrMiss = errors.New("cache miss")
)

var (
	mu         sync.RWMutex
	client     *redis.Client
	miniRedis  *miniredis.Miniredis
	isEmbedded bool
)

// InitRedis connects to redisAddr, or starts an embedded Redis when it is empty.
func InitRedis(ctx context.Context, redisAddr string) error {
	mu.Lock()
	defer mu.Unlock()

	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		miniRedis = mr
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		isEmbedded = true
		logger.Info("Embedded Redis started on", mr.Addr())
		return nil
	}

	c := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("failed to connect to Redis at %s: %w", redisAddr, err)
	}
	client = c
	isEmbedded = false
	logger.Info("Connected to external Redis at", redisAddr)
	return nil
}

// GetClient returns the Redis client, nil before InitRedis.
func GetClient() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

func IsEmbedded() bool {
	mu.RLock()
	defer mu.RUnlock()
	return isEmbedded
}

// Close closes the client and stops the embedded server if one runs.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	var err error
	if client != nil {
		err = client.Close()
		client = nil
	}
	if miniRedis != nil {
		miniRedis.Close()
		miniRedis = nil
	}
	return err
}

func Get(ctx context.Context, key string) (string, error) {
	c := GetClient()
	if c == nil {
		return "", ErrNotInitialized
	}
	result, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return result, err
}

// DeletePattern removes all keys matching a glob pattern.
func DeletePattern(ctx context.Context, pattern string) error {
	c := GetClient()
	if c == nil {
		return ErrNotInitialized
	}

	iter := c.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.Del(ctx, keys...).Err()
	}
	return nil
}
