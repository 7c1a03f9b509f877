package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// TrendingStore tracks search phrase popularity and serves the
// "popular" list consumed by the generator on empty input.
type TrendingStore interface {
	RecordSearch(ctx context.Context, phrase string) error
	Popular(ctx context.Context, limit int) ([]string, error)
}

// RedisTrending keeps popularity counts in a Redis sorted set, shared
// across server instances
type RedisTrending struct {
	client *redis.Client
	key    string
}

// NewRedisTrending creates a trending store over the given Redis client
func NewRedisTrending(client *redis.Client, key string) *RedisTrending {
	if key == "" {
		key = "vehiclesearch:trending"
	}
	return &RedisTrending{client: client, key: key}
}

// RecordSearch increments the popularity of a search phrase
func (t *RedisTrending) RecordSearch(ctx context.Context, phrase string) error {
	phrase = strings.TrimSpace(strings.ToLower(phrase))
	if phrase == "" {
		return nil
	}

	if err := t.client.ZIncrBy(ctx, t.key, 1, phrase).Err(); err != nil {
		return fmt.Errorf("failed to record search phrase: %w", err)
	}
	return nil
}

// Popular returns the most searched phrases, most popular first
func (t *RedisTrending) Popular(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	phrases, err := t.client.ZRevRange(ctx, t.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load popular phrases: %w", err)
	}
	return phrases, nil
}

// StaticTrending serves a fixed popularity list and discards recorded
// searches. Used when no Redis endpoint is configured.
type StaticTrending struct {
	phrases []string
}

// NewStaticTrending creates a trending store over a fixed phrase list
func NewStaticTrending(phrases []string) *StaticTrending {
	return &StaticTrending{phrases: phrases}
}

// RecordSearch is a no-op for the static store
func (t *StaticTrending) RecordSearch(ctx context.Context, phrase string) error {
	return nil
}

// Popular returns the configured phrases up to limit
func (t *StaticTrending) Popular(ctx context.Context, limit int) ([]string, error) {
	if limit > len(t.phrases) {
		limit = len(t.phrases)
	}
	if limit <= 0 {
		return nil, nil
	}
	return t.phrases[:limit], nil
}
