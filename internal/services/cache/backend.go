// Package cache memoizes operation results keyed by operation kind and content checksum.
// It sits entirely outside the sequence engine, which stays unaware of caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Egham-7/numseq/internal/models"
	"github.com/Egham-7/numseq/internal/services/circuitbreaker"
	"github.com/Egham-7/numseq/internal/services/sequence"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Backend stores encoded results
type Backend interface {
	Get(ctx context.Context, key string) (sequence.Result, bool, error)
	Set(ctx context.Context, key string, result sequence.Result) error
	Name() string
	Close() error
}

// entry is the stored form of a sequence.Result
type entry struct {
	Kind  sequence.OperationKind `json:"kind"`
	Int   int64                  `json:"int,omitzero"`
	Float float64                `json:"float,omitzero"`
	Runs  sequence.RunSet        `json:"runs,omitzero"`
}

func encode(result sequence.Result) ([]byte, error) {
	return json.Marshal(entry(result))
}

func decode(data []byte) (sequence.Result, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return sequence.Result{}, fmt.Errorf("failed to decode cached result: %w", err)
	}
	if !e.Kind.Valid() {
		return sequence.Result{}, fmt.Errorf("cached result has unknown kind %q", e.Kind)
	}
	return sequence.Result(e), nil
}

// NewBackend creates the backend selected by cfg. redisClient is required for the redis backend.
func NewBackend(cfg models.ResultCacheConfig, redisClient *redis.Client) (Backend, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second

	switch cfg.Backend {
	case models.CacheBackendMemory, "":
		fiberlog.Debugf("ResultCache: Using in-memory LRU backend with capacity=%d ttl=%v", cfg.Capacity, ttl)
		return NewMemoryBackend(cfg.Capacity, ttl), nil
	case models.CacheBackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis backend selected but no redis client is configured")
		}
		fiberlog.Debugf("ResultCache: Using Redis backend with prefix=%q ttl=%v", cfg.KeyPrefix, ttl)
		breaker := circuitbreaker.New("result-cache-redis")
		return NewGuardedBackend(NewRedisBackend(redisClient, cfg.KeyPrefix, ttl), breaker), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: redis, memory)", cfg.Backend)
	}
}

// MemoryBackend keeps results in a bounded, optionally expiring LRU
type MemoryBackend struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryBackend creates an LRU backend; ttl <= 0 disables expiry
func NewMemoryBackend(capacity int, ttl time.Duration) *MemoryBackend {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryBackend{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (sequence.Result, bool, error) {
	data, ok := m.lru.Get(key)
	if !ok {
		return sequence.Result{}, false, nil
	}
	result, err := decode(data)
	if err != nil {
		return sequence.Result{}, false, err
	}
	return result, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, result sequence.Result) error {
	data, err := encode(result)
	if err != nil {
		return err
	}
	m.lru.Add(key, data)
	return nil
}

func (m *MemoryBackend) Name() string { return string(models.CacheBackendMemory) }

func (m *MemoryBackend) Close() error {
	m.lru.Purge()
	return nil
}

// RedisBackend stores results as JSON strings in Redis
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a Redis backend; ttl <= 0 stores keys without expiry
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, ttl: max(ttl, 0)}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (sequence.Result, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return sequence.Result{}, false, nil
	}
	if err != nil {
		return sequence.Result{}, false, fmt.Errorf("redis get failed: %w", err)
	}
	result, err := decode(data)
	if err != nil {
		return sequence.Result{}, false, err
	}
	return result, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, result sequence.Result) error {
	data, err := encode(result)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisBackend) Name() string { return string(models.CacheBackendRedis) }

// Close is a no-op: the client is owned by the server, which closes it on shutdown
func (r *RedisBackend) Close() error { return nil }
