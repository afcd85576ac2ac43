package redis

import "time"

// Config holds Redis connection settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// MaxWatchRetries bounds optimistic transaction retries on contended keys
	MaxWatchRetries int

	// ConnectTimeout bounds the initial ping
	ConnectTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		MaxWatchRetries: 5,
		ConnectTimeout:  5 * time.Second,
	}
}
