package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/kbukum/userservice/logger"
)

// probePaths are polled by orchestrators and not logged.
var probePaths = map[string]bool{
	"/health": true,
	"/livez":  true,
	"/readyz": true,
}

// RequestLogger logs one line per request, at warn for 4xx and error for
// 5xx. Probe paths are skipped and bodies are never logged.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := record(w)
			next.ServeHTTP(rw, r)

			status := rw.Status()
			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				"proto":              r.Proto,
				"bytes":              rw.bytes,
				logger.FieldStatus:   status,
				logger.FieldDuration: time.Since(start).Milliseconds(),
				logger.FieldClientIP: clientIP(r),
			}
			logByStatus(log.WithContext(r.Context()), fields, status)
		})
	}
}

// logByStatus logs request fields at a level derived from the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
