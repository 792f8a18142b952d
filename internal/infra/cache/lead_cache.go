package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrCacheMiss = errors.New("chave não encontrada no cache")

// LeadCache guarda leads normalizados no Redis e, sem Redis ou com ele fora do ar, em memória.
type LeadCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
	now    func() time.Time

	memCache map[string]cacheItem
	memMutex sync.RWMutex
}

type cacheItem struct {
	value     string
	expiresAt time.Time
}

// NewLeadCache aceita client nil (só memória).
func NewLeadCache(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *LeadCache {
	return &LeadCache{
		client:   client,
		ttl:      ttl,
		logger:   logger.WithField("component", "cache"),
		now:      time.Now,
		memCache: make(map[string]cacheItem),
	}
}

func (c *LeadCache) Get(ctx context.Context, key string) (string, error) {
	if c.client != nil {
		val, err := c.client.Get(ctx, key).Result()
		if err == nil {
			c.logger.WithField("key", key).Debug("Cache hit (Redis)")
			return val, nil
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("key", key).Warn("Erro no Redis, usando cache em memória")
		}
	}

	c.memMutex.RLock()
	item, exists := c.memCache[key]
	c.memMutex.RUnlock()

	if !exists {
		return "", ErrCacheMiss
	}

	if c.now().After(item.expiresAt) {
		c.memMutex.Lock()
		delete(c.memCache, key)
		c.memMutex.Unlock()
		return "", ErrCacheMiss
	}

	c.logger.WithField("key", key).Debug("Cache hit (memória)")
	return item.value, nil
}

func (c *LeadCache) Set(ctx context.Context, key string, value string) error {
	if c.client != nil {
		err := c.client.Set(ctx, key, value, c.ttl).Err()
		if err == nil {
			return nil
		}
		c.logger.WithError(err).WithField("key", key).Warn("Erro no Redis, gravando em memória")
	}

	c.memMutex.Lock()
	c.memCache[key] = cacheItem{value: value, expiresAt: c.now().Add(c.ttl)}
	c.memMutex.Unlock()

	return nil
}

// Ping informa se o Redis responde. Sem Redis configurado não há o que checar.
func (c *LeadCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Size é o número de entradas no cache em memória.
func (c *LeadCache) Size() int {
	c.memMutex.RLock()
	defer c.memMutex.RUnlock()
	return len(c.memCache)
}

func (c *LeadCache) cleanupExpired() {
	c.memMutex.Lock()
	defer c.memMutex.Unlock()

	now := c.now()
	for key, item := range c.memCache {
		if now.After(item.expiresAt) {
			delete(c.memCache, key)
		}
	}
}

// StartCleanup remove entradas vencidas da memória até o ctx ser cancelado.
func (c *LeadCache) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}
