package app

import (
	"context"
	"testing"
	"time"
)

func TestWebhookReplayCache_DegradedClientsAreUnseen(t *testing.T) {
	ctx := context.Background()

	var nilCache *WebhookReplayCache
	if nilCache.Seen(ctx, "sig") {
		t.Fatal("a nil cache must report unseen")
	}
	nilCache.MarkSeen(ctx, "sig")

	noClient := NewWebhookReplayCache(nil, time.Hour)
	if noClient.Seen(ctx, "sig") {
		t.Fatal("a cache without a client must report unseen")
	}
	noClient.MarkSeen(ctx, "sig")

	if noClient.Seen(ctx, "") {
		t.Fatal("an empty signature must report unseen")
	}
}

func TestNewWebhookReplayCache_TTLFallback(t *testing.T) {
	cache := NewWebhookReplayCache(nil, 0)
	if cache.ttl != defaultWebhookTTL {
		t.Fatalf("expected fallback ttl %v, got %v", defaultWebhookTTL, cache.ttl)
	}

	cache = NewWebhookReplayCache(nil, 6*time.Hour)
	if cache.ttl != 6*time.Hour {
		t.Fatalf("expected configured ttl, got %v", cache.ttl)
	}
}
