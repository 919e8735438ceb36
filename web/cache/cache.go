package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/yanews/ya-news/logger"
)

const TTLFeed = 30 * time.Second

const KeyFeedPrefix = "news:feed:"

// KeyFeedGeneration counts feed invalidations; it guards feed cache writes.
const KeyFeedGeneration = "news:feedgen"

// FeedKey is the cache key of a feed page holding limit items.
func FeedKey(limit int) string {
	return fmt.Sprintf("%s%d", KeyFeedPrefix, limit)
}

// GetJSON loads key and unmarshals it into dest.
func GetJSON(ctx context.Context, key string, dest any) error {
	val, err := Get(ctx, key)
	if err != nil {
		return err
	}
	if val == "" {
		return fmt.Errorf("empty value for key: %s", key)
	}
	return json.Unmarshal([]byte(val), dest)
}

// ErrStale is returned by SetJSONIfCurrent when the guard key moved on
// while the value was being loaded.
var ErrStale = errors.New("cache value is stale")

// SetJSONIfCurrent stores value under key only if guardKey still holds guard,
// the value read before the data behind value was loaded. A missing guard key
// reads as "".
func SetJSONIfCurrent(ctx context.Context, key string, value any, expiration time.Duration, guardKey, guard string) error {
	c := GetClient()
	if c == nil {
		return ErrNotInitialized
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	err = c.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, guardKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != guard {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(data), expiration)
			return nil
		})
		return err
	}, guardKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Load runs fn and stores its result under key, unless guardKey changes
// while fn runs. Writers bump guardKey after they commit, so a value loaded
// before a write can never overwrite the entry once that write invalidated it.
func Load[T any](ctx context.Context, key, guardKey string, expiration time.Duration, fn func() (T, error)) (T, error) {
	guard, guardErr := Get(ctx, guardKey)
	if errors.Is(guardErr, ErrMiss) {
		guard, guardErr = "", nil
	}

	value, err := fn()
	if err != nil {
		return value, err
	}

	switch {
	case errors.Is(guardErr, ErrNotInitialized):
	case guardErr != nil:
		logger.Warningf("Cache guard read failed for key %s: %v", guardKey, guardErr)
	default:
		err := SetJSONIfCurrent(ctx, key, value, expiration, guardKey, guard)
		if errors.Is(err, ErrStale) {
			logger.Debugf("Dropped stale cache value for key: %s", key)
		} else if err != nil && !errors.Is(err, ErrNotInitialized) {
			logger.Warningf("Failed to set cache for key %s: %v", key, err)
		}
	}
	return value, nil
}

// GetOrSet returns the cached value of key, or loads it with fn on a miss.
// A cache that is down or not initialised only costs the call to fn.
func GetOrSet[T any](ctx context.Context, key, guardKey string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var value T
	err := GetJSON(ctx, key, &value)
	if err == nil {
		logger.Debugf("Cache hit for key: %s", key)
		return value, nil
	}
	if !errors.Is(err, ErrMiss) && !errors.Is(err, ErrNotInitialized) {
		logger.Warningf("Cache read failed for key %s: %v", key, err)
	}
	return Load(ctx, key, guardKey, expiration, fn)
}

// InvalidateFeed bumps the feed generation and drops every cached feed page.
func InvalidateFeed(ctx context.Context) error {
	c := GetClient()
	if c == nil {
		return nil
	}
	if err := c.Incr(ctx, KeyFeedGeneration).Err(); err != nil {
		return err
	}
	return DeletePattern(ctx, KeyFeedPrefix+"*")
}
