// Package cache implements cache-aside reads over Redis.
//
// Every operation degrades instead of failing: a Redis error on Get is
// reported as a miss and a Redis error on Set skips the write-back. A nil
// *Service behaves as a cache that never hits.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/climatrix/climatrix/internal/config"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/metrics"
	"github.com/go-redis/redis/v8"
)

// TTL selects one of the configured expiry buckets.
type TTL int

const (
	Short TTL = iota
	Medium
	Long
)

func (t TTL) String() string {
	switch t {
	case Short:
		return "short"
	case Medium:
		return "medium"
	default:
		return "long"
	}
}

const scanBatch = 100

type Service struct {
	client *redis.Client
	ttls   map[TTL]time.Duration
}

// Connect parses a redis:// URL and returns a client. The connection itself
// is established lazily.
func Connect(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	opts.MaxRetries = 3
	opts.MinRetryBackoff = 50 * time.Millisecond
	opts.MaxRetryBackoff = 2 * time.Second

	return redis.NewClient(opts), nil
}

func New(client *redis.Client, cfg config.CacheConfig) *Service {
	return &Service{
		client: client,
		ttls: map[TTL]time.Duration{
			Short:  time.Duration(cfg.ShortTTL) * time.Second,
			Medium: time.Duration(cfg.MediumTTL) * time.Second,
			Long:   time.Duration(cfg.LongTTL) * time.Second,
		},
	}
}

func (s *Service) enabled() bool {
	return s != nil && s.client != nil
}

func (s *Service) Duration(ttl TTL) time.Duration {
	if !s.enabled() {
		return 0
	}
	return s.ttls[ttl]
}

func (s *Service) Ping(ctx context.Context) error {
	if !s.enabled() {
		return errors.New("cache disabled")
	}
	return s.client.Ping(ctx).Err()
}

// Get returns the raw cached value and whether it was found.
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.enabled() {
		return nil, false
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCache("get", "miss")
		return nil, false
	}
	if err != nil {
		metrics.RecordCache("get", "error")
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache get failed")
		return nil, false
	}

	metrics.RecordCache("get", "hit")
	return data, true
}

// Set stores value under key for the given TTL bucket.
func (s *Service) Set(ctx context.Context, key string, value []byte, ttl TTL) bool {
	if !s.enabled() {
		return false
	}

	if err := s.client.Set(ctx, key, value, s.ttls[ttl]).Err(); err != nil {
		metrics.RecordCache("set", "error")
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Cache set failed")
		return false
	}

	metrics.RecordCache("set", "ok")
	return true
}

func (s *Service) Del(ctx context.Context, keys ...string) bool {
	if !s.enabled() || len(keys) == 0 {
		return false
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordCache("del", "error")
		logging.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("Cache delete failed")
		return false
	}

	return true
}

// DelPattern removes every key matching a glob pattern and returns how many
// were deleted. It walks the keyspace with SCAN.
func (s *Service) DelPattern(ctx context.Context, pattern string) int {
	if !s.enabled() {
		return 0
	}

	deleted := 0
	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := s.client.Del(ctx, batch...).Result()
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("pattern", pattern).Msg("Cache pattern delete failed")
		}
		deleted += int(n)
		batch = batch[:0]
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			flush()
		}
	}
	flush()

	if err := iter.Err(); err != nil {
		metrics.RecordCache("del_pattern", "error")
		logging.Ctx(ctx).Warn().Err(err).Str("pattern", pattern).Msg("Cache scan failed")
	}

	return deleted
}

// globEscaper quotes SCAN MATCH metacharacters so user supplied key
// segments match literally.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(segment string) string {
	return globEscaper.Replace(segment)
}

// Invalidate drops every cached entry of a resource family.
func (s *Service) Invalidate(ctx context.Context, resource string, ids ...string) {
	resource = escapeGlob(resource)
	patterns := []string{resource + ":*", resource + ":list:*"}
	for _, id := range ids {
		patterns = append(patterns, resource+":"+escapeGlob(id))
	}

	for _, pattern := range patterns {
		s.DelPattern(ctx, pattern)
	}
}

// ReadThrough returns the cached JSON for key, or runs load, stores its JSON
// encoding and returns those same bytes. hit reports whether the value came
// from the cache.
func ReadThrough[T any](ctx context.Context, s *Service, key string, ttl TTL, load func(context.Context) (T, error)) (data json.RawMessage, hit bool, err error) {
	if cached, ok := s.Get(ctx, key); ok && json.Valid(cached) {
		return cached, true, nil
	}

	value, err := load(ctx)
	if err != nil {
		return nil, false, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, false, fmt.Errorf("encode %s: %w", key, err)
	}

	s.Set(ctx, key, encoded, ttl)

	return encoded, false, nil
}
