package token

import (
	"strings"
	"time"

	apperrors "github.com/kbukum/userservice/errors"
)

// MinSecretLength is the minimum HS256 key size in bytes.
const MinSecretLength = 32

// Config is shared by Issuer and Validator. It is copied at construction and
// never mutated afterwards.
type Config struct {
	// Secret is the HMAC-SHA256 signing key.
	Secret string `mapstructure:"secret"`

	// Issuer is written to and required in the "iss" claim.
	Issuer string `mapstructure:"issuer"`

	// Audience is written to and required in the "aud" claim.
	Audience string `mapstructure:"audience"`

	// ExpiresInMinutes is the token lifetime.
	ExpiresInMinutes int `mapstructure:"expires_in_minutes"`
}

// Lifetime returns the configured token lifetime.
func (c Config) Lifetime() time.Duration {
	return time.Duration(c.ExpiresInMinutes) * time.Minute
}

// Validate reports a ConfigurationError for anything that would let the
// service sign weak or unbounded tokens.
func (c Config) Validate() error {
	switch {
	case c.Secret == "":
		return apperrors.Configuration("jwt.secret is required")
	case len(c.Secret) < MinSecretLength:
		return apperrors.Configuration("jwt.secret must be at least %d bytes (got: %d)", MinSecretLength, len(c.Secret))
	case strings.TrimSpace(c.Issuer) == "":
		return apperrors.Configuration("jwt.issuer is required")
	case strings.TrimSpace(c.Audience) == "":
		return apperrors.Configuration("jwt.audience is required")
	case c.ExpiresInMinutes <= 0:
		return apperrors.Configuration("jwt.expires_in_minutes must be > 0 (got: %d)", c.ExpiresInMinutes)
	}
	return nil
}
