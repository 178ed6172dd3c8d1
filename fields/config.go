package fields

import (
	"log/slog"
	"time"
)

// Config controls extraction behaviour.
type Config struct {
	// BatchSize is how many elements are described before yielding the
	// scheduler. Default: 25.
	BatchSize int `yaml:"batch_size"`

	// CacheTTL bounds how long a described element may be reused without
	// re-describing it. Default: 30s.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 25
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
