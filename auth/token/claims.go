package token

import (
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Identity is the subset of a user record a token is issued for.
type Identity struct {
	ID       int64
	Username string
}

// Claims are the identity facts carried by a token. It is a plain value
// with no dependency on the HTTP layer.
type Claims struct {
	Subject   string    `json:"sub"`
	Name      string    `json:"name"`
	Issuer    string    `json:"iss"`
	Audience  string    `json:"aud"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// UserID parses the subject as the numeric user ID.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Username returns the name claim.
func (c Claims) Username() string {
	return c.Name
}

// Lifetime returns ExpiresAt - IssuedAt.
func (c Claims) Lifetime() time.Duration {
	return c.ExpiresAt.Sub(c.IssuedAt)
}

// wireClaims is the JSON payload of a token.
type wireClaims struct {
	Name string `json:"name"`
	gojwt.RegisteredClaims
}

func (w *wireClaims) toClaims() Claims {
	c := Claims{
		Subject: w.Subject,
		Name:    w.Name,
		Issuer:  w.Issuer,
	}
	if len(w.Audience) > 0 {
		c.Audience = w.Audience[0]
	}
	if w.IssuedAt != nil {
		c.IssuedAt = w.IssuedAt.Time
	}
	if w.ExpiresAt != nil {
		c.ExpiresAt = w.ExpiresAt.Time
	}
	return c
}
