package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/userservice/security"
	"github.com/kbukum/userservice/util"
)

// Config configures the go-redis client. Durations accept Go syntax such as
// "8ms" or "3s".
type Config struct {
	// Enabled turns the component on. When off, login attempts are counted
	// in process and nothing here is validated.
	Enabled bool `mapstructure:"enabled"`

	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// MaxRetries is go-redis's per-command retry budget.
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PoolTimeout bounds the wait for a free pooled connection.
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`

	TLS security.TLSConfig `mapstructure:"tls"`
}

func (c *Config) ApplyDefaults() {
	util.Default(&c.Addr, "localhost:6379")
	util.Default(&c.PoolSize, 10)
	util.Default(&c.MinIdleConns, 2)
	util.Default(&c.MaxRetries, 3)
	util.Default(&c.MinRetryBackoff, 8*time.Millisecond)
	util.Default(&c.MaxRetryBackoff, 512*time.Millisecond)
	util.Default(&c.DialTimeout, 5*time.Second)
	util.Default(&c.ReadTimeout, 3*time.Second)
	util.Default(&c.WriteTimeout, 3*time.Second)
	util.Default(&c.PoolTimeout, 4*time.Second)
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.Addr == "":
		return errors.New("redis addr is required")
	case c.PoolSize <= 0:
		return errors.New("pool_size must be > 0")
	case c.MinIdleConns > c.PoolSize:
		return fmt.Errorf("min_idle_conns (%d) must be <= pool_size (%d)", c.MinIdleConns, c.PoolSize)
	case c.DB < 0:
		return errors.New("db must be >= 0")
	case c.MinRetryBackoff > c.MaxRetryBackoff:
		return fmt.Errorf("min_retry_backoff %s exceeds max_retry_backoff %s", c.MinRetryBackoff, c.MaxRetryBackoff)
	}
	for name, d := range map[string]time.Duration{
		"dial_timeout":  c.DialTimeout,
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"pool_timeout":  c.PoolTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return c.TLS.Validate()
}
