package middleware

import (
	"net/http"

	"github.com/kbukum/userservice/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit caps request bodies at maxSize (e.g. "64KB"); an
// unparseable size falls back to 1MB. Reads past the limit fail with
// *http.MaxBytesError, which handlers turn into 413.
func BodySizeLimit(maxSize string) Middleware {
	limit, err := util.ParseSize(maxSize)
	if err != nil {
		limit = defaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Connection", "close")
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
