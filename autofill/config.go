package autofill

import (
	"github.com/hazyhaar/formfill/autofill/internal/config"
)

// FileConfig is the top-level formfill configuration. Re-exported from
// internal.
type FileConfig = config.Config

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with every fallback applied.
func DefaultConfig() *FileConfig {
	return config.Default()
}
