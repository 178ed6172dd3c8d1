// Package config handles formfill configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts both Go duration strings ("250ms", "4h") and bare
// nanosecond integers in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: bad duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("config: bad duration value")
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level formfill configuration.
type Config struct {
	Browser       BrowserConfig  `yaml:"browser"`
	Page          PageConfig     `yaml:"page"`
	Fields        FieldsConfig   `yaml:"fields"`
	Fill          FillConfig     `yaml:"fill"`
	Rescan        RescanConfig   `yaml:"rescan"`
	Profiles      ProfilesConfig `yaml:"profiles"`
	History       HistoryConfig  `yaml:"history"`
	HTTP          HTTPConfig     `yaml:"http"`
	Notifications bool           `yaml:"notifications"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote          string   `yaml:"remote"`
	Headless        *bool    `yaml:"headless"`
	MemoryLimit     int64    `yaml:"memory_limit"`
	RecycleInterval Duration `yaml:"recycle_interval"`
}

// PageConfig names the page to work on.
type PageConfig struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// FieldsConfig controls field extraction.
type FieldsConfig struct {
	BatchSize int      `yaml:"batch_size"`
	CacheTTL  Duration `yaml:"cache_ttl"`
}

// FillConfig controls write execution.
type FillConfig struct {
	VerifyDelay Duration `yaml:"verify_delay"`
	// ReducedEvents drops the full synthetic event sequences and always
	// emits the minimal input/change pair.
	ReducedEvents bool `yaml:"reduced_events"`
}

// RescanConfig controls mutation batching.
type RescanConfig struct {
	Window    Duration `yaml:"window"`
	MaxBuffer int      `yaml:"max_buffer"`
}

// ProfilesConfig locates the profile store.
type ProfilesConfig struct {
	DB string `yaml:"db"`
}

// HistoryConfig locates the fill audit trail.
type HistoryConfig struct {
	// Disabled turns off history recording entirely.
	Disabled      bool   `yaml:"disabled"`
	DB            string `yaml:"db"`
	RetentionDays int    `yaml:"retention_days"`
}

// HTTPConfig controls the local control endpoint.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns a configuration with every fallback applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = Duration(4 * time.Hour)
	}
	if c.Fields.BatchSize <= 0 {
		c.Fields.BatchSize = 25
	}
	if c.Fields.CacheTTL <= 0 {
		c.Fields.CacheTTL = Duration(30 * time.Second)
	}
	if c.Fill.VerifyDelay <= 0 {
		c.Fill.VerifyDelay = Duration(80 * time.Millisecond)
	}
	if c.Rescan.Window <= 0 {
		c.Rescan.Window = Duration(250 * time.Millisecond)
	}
	if c.Rescan.MaxBuffer <= 0 {
		c.Rescan.MaxBuffer = 200
	}
	if c.Profiles.DB == "" {
		c.Profiles.DB = "formfill.db"
	}
	if c.History.DB == "" {
		c.History.DB = "formfill-history.db"
	}
	if c.History.RetentionDays <= 0 {
		c.History.RetentionDays = 90
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = "127.0.0.1:8636"
	}
}

// HeadlessEnabled reports the effective headless setting; unset means
// headless.
func (c *Config) HeadlessEnabled() bool {
	if c.Browser.Headless == nil {
		return true
	}
	return *c.Browser.Headless
}
