// Package token issues and validates HS256-signed JWT bearer tokens.
//
// Tokens carry sub (user ID), name (username), iss, aud, iat and exp, and
// are verifiable by any standard JWT library that holds the shared secret.
package token

import (
	"fmt"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/userservice/errors"
)

// Issuer signs tokens. It holds only immutable configuration.
type Issuer struct {
	cfg      Config
	key      []byte
	lifetime time.Duration
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Issuer{
		cfg:      cfg,
		key:      []byte(cfg.Secret),
		lifetime: cfg.Lifetime(),
	}, nil
}

// Lifetime returns the configured token lifetime.
func (i *Issuer) Lifetime() time.Duration {
	return i.lifetime
}

// Issue builds claims for id at now and signs them. exp is exactly
// now + lifetime after both are truncated to whole seconds.
func (i *Issuer) Issue(id Identity, now time.Time) (string, error) {
	issuedAt := now.Truncate(time.Second)
	claims := &wireClaims{
		Name: id.Username,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.ID, 10),
			Issuer:    i.cfg.Issuer,
			Audience:  gojwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  gojwt.NewNumericDate(issuedAt),
			ExpiresAt: gojwt.NewNumericDate(issuedAt.Add(i.lifetime)),
		},
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("token: sign: %w", err))
	}
	return signed, nil
}
