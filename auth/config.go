package auth

import (
	"fmt"

	"github.com/kbukum/userservice/auth/password"
	"github.com/kbukum/userservice/auth/token"
)

// Config holds all authentication configuration. It composes the
// subpackage configs for loading from YAML/env via mapstructure.
type Config struct {
	// JWT configures token issuance and validation.
	JWT token.Config `mapstructure:"jwt"`

	// Password configures password hashing.
	Password password.Config `mapstructure:"password"`
}

// ApplyDefaults sets defaults for the password section. The jwt section
// has no defaults: a missing secret, issuer or audience must fail startup.
func (c *Config) ApplyDefaults() {
	c.Password.ApplyDefaults()
}

// Validate checks both sub-configurations.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	if err := c.Password.Validate(); err != nil {
		return err
	}
	return nil
}

// Describe returns a human-readable one-liner for the startup summary.
// Example: "JWT(HS256) iss=user-service TTL=1h0m0s password=bcrypt(12)"
func (c *Config) Describe() string {
	line := fmt.Sprintf("JWT(HS256) iss=%s TTL=%s", c.JWT.Issuer, c.JWT.Lifetime())
	switch c.Password.Algorithm {
	case password.AlgorithmArgon2id:
		line += fmt.Sprintf(" password=argon2id(t=%d,m=%d)", c.Password.Argon2Time, c.Password.Argon2Memory)
	default:
		line += fmt.Sprintf(" password=%s(%d)", c.Password.Algorithm, c.Password.BcryptCost)
	}
	return line
}
