package service

import (
	"context"
	"sync"
	"time"

	"gullak/internal/module/advisor/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cooldownKey = "advisor:quota_cooldown"

// redisCooldown stores the quota cooldown flag in Redis with a TTL so every
// dispatcher worker in the process (and any sibling process sharing the
// Redis) skips the network attempt while it is set. Redis being down
// degrades to "not poisoned" — the flag is advisory.
type redisCooldown struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCooldown(client *redis.Client, logger *zap.Logger) domain.CooldownStore {
	return &redisCooldown{client: client, logger: logger.Named("advisor.cooldown")}
}

func (c *redisCooldown) Poison(ctx context.Context, ttl time.Duration) {
	if err := c.client.Set(ctx, cooldownKey, "1", ttl).Err(); err != nil {
		c.logger.Warn("failed to set quota cooldown", zap.Error(err))
	}
}

func (c *redisCooldown) Poisoned(ctx context.Context) bool {
	n, err := c.client.Exists(ctx, cooldownKey).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// memoryCooldown is the in-process fallback used in tests and when Redis is
// not configured.
type memoryCooldown struct {
	mu    sync.Mutex
	until time.Time
}

func NewMemoryCooldown() domain.CooldownStore {
	return &memoryCooldown{}
}

func (c *memoryCooldown) Poison(_ context.Context, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = time.Now().Add(ttl)
}

func (c *memoryCooldown) Poisoned(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.until)
}
