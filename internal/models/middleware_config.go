package models

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RateLimitConfig overrides the default sliding window limiter
type RateLimitConfig struct {
	Max        int
	Expiration time.Duration
	// KeyFunc groups requests; defaults to the client IP
	KeyFunc func(*fiber.Ctx) string
}

// TimeoutConfig fixes the per-request deadline, ignoring X-Request-Timeout
type TimeoutConfig struct {
	Timeout time.Duration
}
