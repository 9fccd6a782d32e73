package service

import (
	"context"
	"sync"
	"time"
)

const handleLookupNamespace = "telegram_handle"

// HandleLookupCache remembers telegram handles that resolved to no account.
// The bot asks about every forwarded message, and most senders never linked
// an account, so misses dominate that traffic. Only absence is cached; hits
// always re-read the store.
type HandleLookupCache interface {
	Get(ctx context.Context, namespace, key string) (bool, error)
	Set(ctx context.Context, namespace, key string, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
	MissTTL() time.Duration
}

type NoopHandleLookupCache struct{}

func NewNoopHandleLookupCache() *NoopHandleLookupCache { return &NoopHandleLookupCache{} }

func (c *NoopHandleLookupCache) Get(context.Context, string, string) (bool, error) { return false, nil }

func (c *NoopHandleLookupCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (c *NoopHandleLookupCache) InvalidateNamespace(context.Context, string) error { return nil }

func (c *NoopHandleLookupCache) MissTTL() time.Duration { return 0 }

type InMemoryHandleLookupCache struct {
	mu      sync.RWMutex
	missTTL time.Duration
	store   map[string]map[string]time.Time
}

func NewInMemoryHandleLookupCache(missTTL time.Duration) *InMemoryHandleLookupCache {
	return &InMemoryHandleLookupCache{
		missTTL: missTTL,
		store:   make(map[string]map[string]time.Time),
	}
}

func (c *InMemoryHandleLookupCache) Get(_ context.Context, namespace, key string) (bool, error) {
	now := time.Now()
	c.mu.RLock()
	ns, ok := c.store[namespace]
	if !ok {
		c.mu.RUnlock()
		return false, nil
	}
	expiresAt, ok := ns[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if now.After(expiresAt) {
		c.mu.Lock()
		if ns2, ok2 := c.store[namespace]; ok2 {
			delete(ns2, key)
			if len(ns2) == 0 {
				delete(c.store, namespace)
			}
		}
		c.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (c *InMemoryHandleLookupCache) Set(_ context.Context, namespace, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.store[namespace]
	if !ok {
		ns = make(map[string]time.Time)
		c.store[namespace] = ns
	}
	ns[key] = time.Now().Add(ttl)
	return nil
}

func (c *InMemoryHandleLookupCache) InvalidateNamespace(_ context.Context, namespace string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, namespace)
	return nil
}

func (c *InMemoryHandleLookupCache) MissTTL() time.Duration { return c.missTTL }
