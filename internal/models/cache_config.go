package models

// CacheBackendType represents the type of cache backend to use
type CacheBackendType string

const (
	CacheBackendRedis  CacheBackendType = "redis"
	CacheBackendMemory CacheBackendType = "memory"
)

// ResultCacheConfig holds configuration for checksum-keyed result memoization (optional)
type ResultCacheConfig struct {
	Enabled    bool             `json:"enabled,omitzero" yaml:"enabled"`
	Backend    CacheBackendType `json:"backend,omitzero" yaml:"backend"`         // "redis" or "memory"
	RedisURL   string           `json:"redis_url,omitzero" yaml:"redis_url"`     // Required if backend is "redis"
	Capacity   int              `json:"capacity,omitzero" yaml:"capacity"`       // LRU size for the "memory" backend
	TTLSeconds int              `json:"ttl_seconds,omitzero" yaml:"ttl_seconds"` // 0 keeps entries until evicted
	KeyPrefix  string           `json:"key_prefix,omitzero" yaml:"key_prefix"`
}
