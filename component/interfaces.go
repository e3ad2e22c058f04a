package component

import (
	"context"
	"time"
)

// HealthStatus is the state a component reports to /health and /readyz.
type HealthStatus string

const (
	StatusHealthy HealthStatus = "healthy"
	// StatusDegraded keeps the service ready; the dependency is optional.
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in the health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	// Latency is filled in by Registry.HealthAll.
	Latency time.Duration `json:"latency_ns,omitempty"`
}

// Component is infrastructure with a start/stop lifecycle: the database,
// redis, the credential API and the HTTP server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. It is only called after a successful Start.
	Stop(ctx context.Context) error
	// Health must respect ctx; the registry bounds each check.
	Health(ctx context.Context) Health
}

// Description is a component's line in the startup summary.
type Description struct {
	// Name defaults to Component.Name() when empty.
	Name string
	// Type is "database", "redis" or "server".
	Type    string
	Details string
	Port    int
}

// Describable components appear in the infrastructure section of the
// startup summary.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route in the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by the server component.
type RouteProvider interface {
	Routes() []Route
}
