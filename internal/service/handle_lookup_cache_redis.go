package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHandleLookupCache is the shared-cache variant for multi-replica
// deployments. Each miss is a plain key with TTL; a per-namespace index set
// makes invalidation a bounded DEL instead of a SCAN.
type RedisHandleLookupCache struct {
	client  redis.UniversalClient
	prefix  string
	missTTL time.Duration
}

func NewRedisHandleLookupCache(client redis.UniversalClient, prefix string, missTTL time.Duration) *RedisHandleLookupCache {
	if prefix == "" {
		prefix = "handle_lookup"
	}
	return &RedisHandleLookupCache{client: client, prefix: prefix, missTTL: missTTL}
}

func (c *RedisHandleLookupCache) Get(ctx context.Context, namespace, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	_, err := c.client.Get(ctx, c.dataKey(namespace, key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisHandleLookupCache) Set(ctx context.Context, namespace, key string, ttl time.Duration) error {
	if c.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := c.dataKey(namespace, key)
	indexKey := c.indexKey(namespace)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, dataKey, "1", ttl)
	pipe.SAdd(ctx, indexKey, dataKey)
	pipe.Expire(ctx, indexKey, ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisHandleLookupCache) InvalidateNamespace(ctx context.Context, namespace string) error {
	if c.client == nil {
		return nil
	}
	indexKey := c.indexKey(namespace)
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := c.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisHandleLookupCache) MissTTL() time.Duration { return c.missTTL }

func (c *RedisHandleLookupCache) dataKey(namespace, key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s:data:%s:%s", c.prefix, normalizeNamespace(namespace), hex.EncodeToString(sum[:16]))
}

func (c *RedisHandleLookupCache) indexKey(namespace string) string {
	return fmt.Sprintf("%s:index:%s", c.prefix, normalizeNamespace(namespace))
}

func normalizeNamespace(namespace string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(namespace)), ":", "_")
}
