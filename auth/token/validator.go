package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/userservice/clock"
	apperrors "github.com/kbukum/userservice/errors"
)

var signingMethod = gojwt.SigningMethodHS256

// Validator verifies tokens produced by Issuer. Validation is a pure
// function of the token, the time and the configuration.
type Validator struct {
	cfg   Config
	key   []byte
	clock clock.Clock
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock sets the clock used by ValidateToken.
func WithClock(c clock.Clock) ValidatorOption {
	return func(v *Validator) { v.clock = c }
}

// NewValidator validates cfg and returns a Validator.
func NewValidator(cfg Config, opts ...ValidatorOption) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v := &Validator{cfg: cfg, key: []byte(cfg.Secret), clock: clock.System()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Validate checks, in order: structure, signature, issuer, audience, expiry.
// Nothing in the payload is read before the signature has been verified.
func (v *Validator) Validate(tokenString string, now time.Time) (Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, apperrors.MalformedToken()
	}

	alg, err := headerAlg(parts[0])
	if err != nil {
		return Claims{}, apperrors.MalformedToken().WithCause(err)
	}
	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return Claims{}, apperrors.MalformedToken().WithCause(err)
	}

	if alg != signingMethod.Alg() {
		return Claims{}, apperrors.SignatureInvalid()
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, v.key); err != nil {
		return Claims{}, apperrors.SignatureInvalid().WithCause(err)
	}

	wc := &wireClaims{}
	_, err = gojwt.ParseWithClaims(tokenString, wc, v.keyFunc,
		gojwt.WithValidMethods([]string{signingMethod.Alg()}),
		gojwt.WithIssuer(v.cfg.Issuer),
		gojwt.WithAudience(v.cfg.Audience),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return Claims{}, classify(err)
	}
	return wc.toClaims(), nil
}

// ValidateToken validates against the configured clock. It lets the
// Validator serve as an auth.TokenValidator.
func (v *Validator) ValidateToken(tokenString string) (any, error) {
	return v.Validate(tokenString, v.clock.Now())
}

func (v *Validator) keyFunc(t *gojwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
		return nil, gojwt.ErrTokenSignatureInvalid
	}
	return v.key, nil
}

func headerAlg(segment string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return "", err
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", err
	}
	if header.Alg == "" {
		return "", errors.New("token: alg header missing")
	}
	return header.Alg, nil
}

// classify maps golang-jwt errors onto the taxonomy. Claim failures are
// joined by the library, so the checks run in priority order.
func classify(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, gojwt.ErrTokenMalformed):
		appErr = apperrors.MalformedToken()
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		appErr = apperrors.SignatureInvalid()
	case errors.Is(err, gojwt.ErrTokenInvalidIssuer):
		appErr = apperrors.IssuerMismatch()
	case errors.Is(err, gojwt.ErrTokenInvalidAudience):
		appErr = apperrors.AudienceMismatch()
	case errors.Is(err, gojwt.ErrTokenRequiredClaimMissing):
		appErr = apperrors.MalformedToken()
	case errors.Is(err, gojwt.ErrTokenExpired):
		appErr = apperrors.TokenExpired()
	default:
		appErr = apperrors.MalformedToken()
	}
	return appErr.WithCause(err)
}
