package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/userservice/component"
	"github.com/kbukum/userservice/version"
)

// HealthChecker collects the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// ReadinessChecker reports whether the service can take traffic.
type ReadinessChecker func(ctx context.Context) bool

type probeBody struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  time.Time          `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

func respond(c *gin.Context, ok bool, body probeBody) {
	body.Timestamp = time.Now().UTC().Truncate(time.Second)
	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}

// Health reports the worst component status. Only unhealthy yields 503;
// degraded still answers 200.
func Health(service string, check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var comps []component.Health
		if check != nil {
			comps = check(c.Request.Context())
		}
		status := worst(comps)
		respond(c, status != component.StatusUnhealthy, probeBody{
			Status:     string(status),
			Service:    service,
			Components: comps,
		})
	}
}

// Liveness answers 200 as long as the process serves HTTP. It never looks
// at dependencies, so a database outage does not get the pod restarted.
func Liveness(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, true, probeBody{Status: "alive", Service: service})
	}
}

// Readiness answers 503 "not_ready" while check fails.
func Readiness(service string, check ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ready := check == nil || check(c.Request.Context())
		status := "ready"
		if !ready {
			status = "not_ready"
		}
		respond(c, ready, probeBody{Status: status, Service: service})
	}
}

func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	}
}

// Info adds process uptime to the build information.
func Info(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"service":    service,
			"version":    v.String(),
			"go_version": v.GoVersion,
			"uptime":     version.Uptime().Truncate(time.Second).String(),
		})
	}
}

func worst(comps []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range comps {
		if h.Status == component.StatusUnhealthy {
			return h.Status
		}
		if h.Status == component.StatusDegraded {
			status = h.Status
		}
	}
	return status
}
