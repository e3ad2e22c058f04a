// Package server provides the HTTP server for userservice: gin routing
// served over HTTP/1.1 and h2c, a lifecycle component for bootstrap, the
// standard probe endpoints and the JSON error envelope.
//
// Middleware is applied in two layers. Server-wide concerns (recovery,
// request ID, CORS, body size, request logging) wrap the whole handler as
// net/http middleware, so they also cover 404s and panics inside gin.
// Route-aware concerns (telemetry, bearer auth, rate limiting) run as gin
// handlers. See server/middleware.
//
// Default endpoints (server/endpoint):
//
//   - /health: aggregated component health
//   - /livez: liveness probe
//   - /readyz: readiness probe
//   - /version: build metadata
//   - /info: service name, version and uptime
package server
