/**
 * @description
 * Advisory webhook idempotency cache backed by Redis. A delivery signature is
 * recorded after its update has been fully applied, with a bounded retention
 * window, so byte-identical redeliveries can be short-circuited before
 * touching the database.
 *
 * The cache is explicitly NOT authoritative: the gateway re-signs deliveries
 * it retries after a timeout, so signature dedup alone cannot catch every
 * replay. Correctness is owned by the row-lock/terminal-status check in the
 * store; a cold, stale, or unreachable cache only costs latency.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	webhookSeenKeyPrefix = "webhook:processed:"
	defaultWebhookTTL    = 24 * time.Hour
)

// IdempotencyCache records which webhook deliveries have been fully applied.
type IdempotencyCache interface {
	// Seen reports whether this delivery signature was already applied.
	// Errors degrade to false; a miss is always safe.
	Seen(ctx context.Context, signature string) bool
	// MarkSeen records the signature with the retention TTL, best-effort.
	MarkSeen(ctx context.Context, signature string)
}

// WebhookReplayCache is the Redis-backed IdempotencyCache.
type WebhookReplayCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewWebhookReplayCache creates a cache with the given retention window.
// A non-positive ttl falls back to 24 hours.
func NewWebhookReplayCache(client redis.UniversalClient, ttl time.Duration) *WebhookReplayCache {
	if ttl <= 0 {
		ttl = defaultWebhookTTL
	}
	return &WebhookReplayCache{client: client, ttl: ttl}
}

func (c *WebhookReplayCache) Seen(ctx context.Context, signature string) bool {
	if c == nil || c.client == nil || signature == "" {
		return false
	}
	n, err := c.client.Exists(ctx, webhookSeenKeyPrefix+signature).Result()
	if err != nil {
		log.Printf("level=warn component=idempotency_cache msg=\"exists check failed; treating as unseen\" err=%v", err)
		return false
	}
	return n > 0
}

func (c *WebhookReplayCache) MarkSeen(ctx context.Context, signature string) {
	if c == nil || c.client == nil || signature == "" {
		return
	}
	if err := c.client.Set(ctx, webhookSeenKeyPrefix+signature, "1", c.ttl).Err(); err != nil {
		log.Printf("level=warn component=idempotency_cache msg=\"mark seen failed\" err=%v", err)
	}
}

// noopIdempotencyCache is used when Redis is not configured. Every delivery
// then reaches the store, which stays correct on its own.
type noopIdempotencyCache struct{}

func (noopIdempotencyCache) Seen(ctx context.Context, signature string) bool { return false }
func (noopIdempotencyCache) MarkSeen(ctx context.Context, signature string)  {}
