// Package authctx carries verified token claims through a request context.
// The auth middleware stores whatever the validator returned; handlers read
// it back with the concrete type they expect.
//
//	claims, ok := authctx.Get[token.Claims](c.Request.Context())
package authctx

import "context"

type claimsKey struct{}

// Set returns a copy of ctx holding claims.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// Get returns the stored claims as T. A missing value and a value of some
// other type both report false.
func Get[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(claimsKey{}).(T)
	return claims, ok
}
