// Package pkg re-exports the configuration types needed to embed the numseq server.
package pkg

import "github.com/Egham-7/numseq/internal/models"

type (
	ServerConfig      = models.ServerConfig
	SourceConfig      = models.SourceConfig
	ResultCacheConfig = models.ResultCacheConfig
	DatabaseConfig    = models.DatabaseConfig
	UsageConfig       = models.UsageConfig
	RateLimitConfig   = models.RateLimitConfig
	TimeoutConfig     = models.TimeoutConfig
)
