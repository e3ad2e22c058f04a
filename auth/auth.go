package auth

// TokenValidator turns a bearer token into claims. The auth middleware only
// knows this interface; signing keys stay inside the token package.
//
// *token.Validator implements it and returns token.Claims, which handlers
// read back with authctx.Get[token.Claims].
type TokenValidator interface {
	ValidateToken(token string) (any, error)
}

// TokenValidatorFunc lets a plain function act as a TokenValidator, e.g. to
// pin the validation time in tests:
//
//	auth.TokenValidatorFunc(func(t string) (any, error) { return v.Validate(t, now) })
type TokenValidatorFunc func(token string) (any, error)

func (f TokenValidatorFunc) ValidateToken(token string) (any, error) { return f(token) }
