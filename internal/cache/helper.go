package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"recipebox/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON loads key into dest. It reports false with no error on a miss or
// when no client is configured.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key for ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside serves dest from Redis, falling back to fetch on a miss and caching
// the result. Cache failures never fail the call; fetch errors do.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	prefix := keyPrefix(key)

	found, err := GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(prefix, "error").Inc()
	case found:
		observability.CacheLookups.WithLabelValues(prefix, "hit").Inc()
		return nil
	case client != nil:
		observability.CacheLookups.WithLabelValues(prefix, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
