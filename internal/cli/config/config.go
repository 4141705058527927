package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the jarweave configuration
type Config struct {
	Platform PlatformConfig `mapstructure:"platform"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Output   OutputConfig   `mapstructure:"output"`
}

// PlatformConfig identifies the API distribution being augmented
type PlatformConfig struct {
	Version  string `mapstructure:"version"`
	Metadata string `mapstructure:"metadata"`
}

// CacheConfig configures the transform cache
type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	Disabled bool   `mapstructure:"disabled"`
}

// OutputConfig configures where uncached transform outputs land
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads the configuration from jarweave.yml or jarweave.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.disabled", false)
	v.SetDefault("output.dir", "build/transformed")

	// Set config name and paths
	v.SetConfigName("jarweave")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support (JARWEAVE_PLATFORM_VERSION etc.)
	v.SetEnvPrefix("jarweave")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// defaultCacheDir places the cache under the user cache directory, falling
// back to a local directory when none is available.
func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "jarweave", "transforms")
	}
	return filepath.Join(".jarweave", "transforms")
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Platform.Metadata != "" {
		if _, err := os.Stat(cfg.Platform.Metadata); err != nil {
			return fmt.Errorf("platform.metadata points to an unreadable file: %s", cfg.Platform.Metadata)
		}
	}
	return nil
}
