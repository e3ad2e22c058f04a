package ratelimit

import (
	"fmt"
	"time"
)

// Config configures login throttling.
type Config struct {
	Enabled bool `mapstructure:"enabled"`

	// Attempts is the number of attempts allowed per key and window.
	Attempts int `mapstructure:"attempts"`

	// Window is the length of a counting window.
	Window time.Duration `mapstructure:"window"`

	// KeyPrefix namespaces the Redis keys.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Attempts <= 0 {
		c.Attempts = 10
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "userservice:login:"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Attempts <= 0 {
		return fmt.Errorf("rate_limit.attempts must be > 0")
	}
	if c.Window < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s, got %s", c.Window)
	}
	return nil
}
