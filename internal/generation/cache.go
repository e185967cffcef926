package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache stores remote successes keyed by CacheKey.
type Cache interface {
	Get(ctx context.Context, key string) (Response, bool, error)
	Set(ctx context.Context, key string, r Response, ttl time.Duration) error
}

// CacheKey is stable across case and whitespace differences in the prompt.
func CacheKey(action Action, prompt string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(prompt), " "))
	sum := sha256.Sum256([]byte(string(action) + "\x00" + norm))
	return string(action) + ":" + hex.EncodeToString(sum[:16])
}

type RedisCache struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisCache(rdb *goredis.Client, prefix string) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Response, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, err
	}
	var r Response
	if err := json.Unmarshal(raw, &r); err != nil {
		return Response{}, false, err
	}
	return r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, r Response, ttl time.Duration) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, raw, ttl).Err()
}
