package middleware

import "net/http"

// Middleware decorates an http.Handler. The server applies these around
// the whole gin engine, so they also see 404 and 405 responses. Per-route
// concerns such as auth and rate limiting are gin handlers instead.
type Middleware func(http.Handler) http.Handler

// Chain nests mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range mws {
			h = mws[len(mws)-1-i](h)
		}
		return h
	}
}
