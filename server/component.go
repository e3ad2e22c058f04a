package server

import (
	"context"
	"fmt"

	"github.com/kbukum/userservice/component"
)

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component registers a Server with the lifecycle registry. Register it
// last so every route is mounted before the port opens.
type Component struct {
	srv *Server
}

func NewComponent(s *Server) *Component { return &Component{srv: s} }

func (c *Component) Name() string { return "http-server" }

func (c *Component) Start(ctx context.Context) error { return c.srv.Start(ctx) }

func (c *Component) Stop(ctx context.Context) error { return c.srv.Stop(ctx) }

// Health is unhealthy until the listener is bound.
func (c *Component) Health(context.Context) component.Health {
	c.srv.mu.Lock()
	bound := c.srv.listener != nil
	c.srv.mu.Unlock()

	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !bound {
		h.Status, h.Message = component.StatusUnhealthy, "HTTP server not started"
	}
	return h
}

func (c *Component) Describe() component.Description {
	proto := "h2c"
	if c.srv.httpServer.TLSConfig != nil {
		proto = "tls"
	}
	if c.srv.config.TLS.CAFile != "" {
		proto += "+mtls"
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s %s body<=%s", c.srv.Addr(), proto, c.srv.config.MaxBodySize),
		Port:    c.srv.config.Port,
	}
}

// Routes lists the engine's routes for the startup summary.
func (c *Component) Routes() []component.Route {
	return collectRoutes(c.srv.engine.Routes())
}
