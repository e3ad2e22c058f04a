package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/userservice/util"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the SQL backend and tunes its pool.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `mapstructure:"driver"`
	// DSN is a file path for sqlite and a URL or key=value string for
	// postgres. It may hold a password and is only logged masked.
	DSN string `mapstructure:"dsn"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	// MaxRetries counts connection attempts, not retries after the first.
	MaxRetries int `mapstructure:"max_retries"`

	// Migrate applies pending migrations during Start.
	Migrate bool `mapstructure:"migrate"`

	// SlowQueryThreshold logs slower statements at warn; zero disables.
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
	// LogLevel is the gorm level: silent, error, warn (default) or info.
	LogLevel string `mapstructure:"log_level"`
}

func (c *Config) ApplyDefaults() {
	util.Default(&c.Driver, DriverSQLite)
	if c.Driver == DriverSQLite {
		util.Default(&c.DSN, "userservice.db")
	}
	util.Default(&c.MaxOpenConns, 25)
	util.Default(&c.MaxIdleConns, 5)
	util.Default(&c.ConnMaxLifetime, time.Hour)
	util.Default(&c.ConnMaxIdleTime, 5*time.Minute)
	util.Default(&c.MaxRetries, 5)
	util.Default(&c.SlowQueryThreshold, 200*time.Millisecond)
	util.Default(&c.LogLevel, "warn")
}

func (c *Config) Validate() error {
	if c.Driver != DriverSQLite && c.Driver != DriverPostgres {
		return fmt.Errorf("database driver %q is not supported (use %s or %s)", c.Driver, DriverSQLite, DriverPostgres)
	}
	switch {
	case c.DSN == "":
		return errors.New("database DSN is required")
	case c.MaxOpenConns <= 0:
		return errors.New("max_open_conns must be > 0")
	case c.MaxIdleConns <= 0:
		return errors.New("max_idle_conns must be > 0")
	case c.MaxIdleConns > c.MaxOpenConns:
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	case c.ConnMaxLifetime < 0 || c.ConnMaxIdleTime < 0:
		return errors.New("conn_max_lifetime and conn_max_idle_time must not be negative")
	case c.SlowQueryThreshold < 0:
		return errors.New("slow_query_threshold must not be negative")
	case c.MaxRetries <= 0:
		return errors.New("max_retries must be > 0")
	}
	if _, ok := gormLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}
