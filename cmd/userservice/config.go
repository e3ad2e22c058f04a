package main

import (
	"fmt"

	"github.com/kbukum/userservice/auth"
	"github.com/kbukum/userservice/config"
	"github.com/kbukum/userservice/database"
	"github.com/kbukum/userservice/observability"
	"github.com/kbukum/userservice/ratelimit"
	"github.com/kbukum/userservice/redis"
	"github.com/kbukum/userservice/server"
	"github.com/kbukum/userservice/version"
)

const (
	serviceName = "userservice"
	envPrefix   = "USERSERVICE"
)

// AppConfig is the full configuration of the userservice binary.
//
// Every leaf can be overridden from the environment with the USERSERVICE_
// prefix, e.g. USERSERVICE_JWT_SECRET or USERSERVICE_DATABASE_DSN.
type AppConfig struct {
	config.ServiceConfig `mapstructure:",squash"`

	// jwt and password sections.
	Auth auth.Config `mapstructure:",squash"`

	Server        server.Config        `mapstructure:"server"`
	Database      database.Config      `mapstructure:"database"`
	Redis         redis.Config         `mapstructure:"redis"`
	RateLimit     ratelimit.Config     `mapstructure:"rate_limit"`
	Observability observability.Config `mapstructure:"observability"`
}

// ApplyDefaults fills every section's defaults.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section and stops at the first failure.
func (c *AppConfig) Validate() error {
	checks := []struct {
		section string
		check   func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"auth", c.Auth.Validate},
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"redis", c.Redis.Validate},
		{"rate_limit", c.RateLimit.Validate},
		{"observability", c.Observability.Validate},
		{"production", c.validateProduction},
	}
	for _, s := range checks {
		if err := s.check(); err != nil {
			return fmt.Errorf("%s: %w", s.section, err)
		}
	}
	return nil
}

// validateProduction refuses settings that are only acceptable on a
// developer machine.
func (c *AppConfig) validateProduction() error {
	if !c.IsProduction() {
		return nil
	}
	if c.Server.TLS.SkipVerify || c.Redis.TLS.SkipVerify {
		return fmt.Errorf("tls.skip_verify is not allowed in production")
	}
	if c.Debug {
		return fmt.Errorf("debug is not allowed in production")
	}
	return nil
}

func loadConfig(configFile, envFile string) (*AppConfig, error) {
	opts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
