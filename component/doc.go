// Package component defines the lifecycle contract for infrastructure the
// service depends on (database, redis, HTTP server).
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse. Their Health feeds the /readyz endpoint.
package component
