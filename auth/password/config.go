package password

import (
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/util"
)

// Algorithm names a hashing scheme. A hasher verifies only its own format:
// after switching algorithms, hashes stored under the old one fail with
// MALFORMED_HASH until they are rehashed.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Config is the "password" section.
type Config struct {
	// Algorithm defaults to bcrypt.
	Algorithm Algorithm `mapstructure:"algorithm"`

	// BcryptCost is the log2 work factor, 4 to 31 (default 12).
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// argon2id parameters: passes, memory in KiB and lanes.
	Argon2Time    uint32 `mapstructure:"argon2_time"`
	Argon2Memory  uint32 `mapstructure:"argon2_memory"`
	Argon2Threads uint8  `mapstructure:"argon2_threads"`

	// MinLength is measured in bytes. Blank passwords are always rejected.
	MinLength int `mapstructure:"min_length"`
}

func (c *Config) ApplyDefaults() {
	util.Default(&c.Algorithm, AlgorithmBcrypt)
	util.Default(&c.BcryptCost, 12)
	util.Default(&c.Argon2Time, 1)
	util.Default(&c.Argon2Memory, 64*1024)
	util.Default(&c.Argon2Threads, 4)
	util.Default(&c.MinLength, 1)
}

func (c *Config) Validate() error {
	if err := c.validateAlgorithm(); err != nil {
		return err
	}
	if c.MinLength < 1 || c.MinLength > bcryptMaxPasswordLen {
		return apperrors.Configuration("password.min_length must be between 1 and %d (got: %d)",
			bcryptMaxPasswordLen, c.MinLength)
	}
	return nil
}

func (c *Config) validateAlgorithm() error {
	switch c.Algorithm {
	case AlgorithmBcrypt:
		if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
			return apperrors.Configuration("password.bcrypt_cost must be between %d and %d (got: %d)",
				bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
		}
		return nil
	case AlgorithmArgon2id:
		switch {
		case c.Argon2Time < 1:
			return apperrors.Configuration("password.argon2_time must be >= 1")
		case c.Argon2Threads < 1:
			return apperrors.Configuration("password.argon2_threads must be >= 1")
		case c.Argon2Memory < 8*uint32(c.Argon2Threads):
			return apperrors.Configuration("password.argon2_memory must be >= 8*threads KiB (got: %d)", c.Argon2Memory)
		}
		return nil
	}
	return apperrors.Configuration("password.algorithm %q is not supported (use bcrypt or argon2id)", c.Algorithm)
}

// NewHasher builds the Hasher cfg selects, after defaults and validation.
func NewHasher(cfg Config) (Hasher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Algorithm {
	case AlgorithmArgon2id:
		return NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
			WithArgon2MinLength(cfg.MinLength),
		), nil
	default:
		return NewBcryptHasher(WithCost(cfg.BcryptCost), WithMinLength(cfg.MinLength)), nil
	}
}
