package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kbukum/userservice/component"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/resilience"
)

// Component runs the Redis client under the component registry. Redis only
// backs login throttling, so a lost connection reports degraded and the
// service stays ready.
type Component struct {
	cfg    Config
	log    *logger.Logger
	client atomic.Pointer[Client]
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a Redis component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("redis")}
}

// Client returns the connected client, or nil before Start and after Stop.
func (c *Component) Client() *Client {
	return c.client.Load()
}

func (c *Component) Name() string { return "redis" }

// Start creates the client and waits for a successful PING, retrying a few
// times so the service can start alongside Redis.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("redis start: %w", err)
	}

	err = resilience.RetryFunc(ctx, resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			c.log.Warn("Redis not reachable, retrying", map[string]interface{}{
				"attempt":         attempt,
				"backoff":         backoff.String(),
				logger.FieldError: err.Error(),
			})
		},
	}, func() error { return client.Ping(ctx) })
	if err != nil {
		_ = client.Close()
		return fmt.Errorf("redis start: %w", err)
	}

	c.client.Store(client)
	return nil
}

// Stop closes the client.
func (c *Component) Stop(_ context.Context) error {
	return c.client.Swap(nil).Close()
}

// Health pings Redis.
func (c *Component) Health(ctx context.Context) component.Health {
	client := c.client.Load()
	if client == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not connected"}
	}
	if err := client.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: fmt.Sprintf("login throttling is failing open: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s db=%d pool=%d", c.cfg.Addr, c.cfg.DB, c.cfg.PoolSize)
	if c.cfg.TLS.Enabled {
		details += " tls"
	}
	return component.Description{Name: "Redis", Type: "redis", Details: details}
}
