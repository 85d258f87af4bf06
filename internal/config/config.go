package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Egham-7/numseq/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultMaxLineBytes   = 64 * 1024
	defaultBodyLimitMB    = 64
	defaultCacheCapacity  = 1000
	defaultCacheKeyPrefix = "numseq:"
	defaultUsageWorkers   = 4
	defaultUsageBuffer    = 1024
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

// Config represents the complete application configuration
type Config struct {
	Server      models.ServerConfig       `yaml:"server"`
	Source      models.SourceConfig       `yaml:"source"`
	ResultCache *models.ResultCacheConfig `yaml:"result_cache,omitempty"`
	Database    *models.DatabaseConfig    `yaml:"database,omitempty"`
	Usage       *models.UsageConfig       `yaml:"usage,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration after substituting environment variables
func Parse(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// ApplyDefaults fills zero values that have a sensible default
func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.AllowedOrigins == "" {
		c.Server.AllowedOrigins = "*"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.BodyLimitMB <= 0 {
		c.Server.BodyLimitMB = defaultBodyLimitMB
	}
	if c.Source.MaxLineBytes <= 0 {
		c.Source.MaxLineBytes = defaultMaxLineBytes
	}

	if c.ResultCache != nil {
		if c.ResultCache.Backend == "" {
			c.ResultCache.Backend = models.CacheBackendMemory
		}
		if c.ResultCache.Capacity <= 0 {
			c.ResultCache.Capacity = defaultCacheCapacity
		}
		if c.ResultCache.KeyPrefix == "" {
			c.ResultCache.KeyPrefix = defaultCacheKeyPrefix
		}
	}

	if c.Usage != nil {
		if c.Usage.Workers <= 0 {
			c.Usage.Workers = defaultUsageWorkers
		}
		if c.Usage.BufferSize <= 0 {
			c.Usage.BufferSize = defaultUsageBuffer
		}
	}
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ResultCacheEnabled reports whether results should be memoized
func (c *Config) ResultCacheEnabled() bool {
	return c.ResultCache != nil && c.ResultCache.Enabled
}

// UsageEnabled reports whether the operation log should be written
func (c *Config) UsageEnabled() bool {
	return c.Database != nil && c.Usage != nil && c.Usage.Enabled
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.Server.AllowedOrigins == "" {
		missing = append(missing, "server.allowed_origins")
	}
	if c.ResultCacheEnabled() && c.ResultCache.Backend == models.CacheBackendRedis && c.ResultCache.RedisURL == "" {
		missing = append(missing, "result_cache.redis_url")
	}
	if c.Usage != nil && c.Usage.Enabled && c.Database == nil {
		missing = append(missing, "database")
	}

	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	if c.ResultCacheEnabled() {
		switch c.ResultCache.Backend {
		case models.CacheBackendRedis, models.CacheBackendMemory:
		default:
			return fmt.Errorf("unsupported cache backend: %s (supported: redis, memory)", c.ResultCache.Backend)
		}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration fields: " + strings.Join(e.MissingFields, ", ")
}
