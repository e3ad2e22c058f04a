package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/userservice/api"
	"github.com/kbukum/userservice/auth/password"
	"github.com/kbukum/userservice/auth/token"
	"github.com/kbukum/userservice/component"
	"github.com/kbukum/userservice/credential"
	"github.com/kbukum/userservice/database"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/observability"
	"github.com/kbukum/userservice/ratelimit"
	"github.com/kbukum/userservice/redis"
	"github.com/kbukum/userservice/server"
	"github.com/kbukum/userservice/server/middleware"
	"github.com/kbukum/userservice/user"
)

// apiComponent builds the credential service on top of the started
// infrastructure and mounts the /user routes. It is registered after the
// database and redis components and before the HTTP server, so routes exist
// before the listener is bound.
type apiComponent struct {
	cfg   *AppConfig
	db    *database.Component
	redis *redis.Component // nil when redis is disabled
	srv   *server.Server
	log   *logger.Logger

	mounted atomic.Bool
}

var _ component.Component = (*apiComponent)(nil)

func (a *apiComponent) Name() string { return "credential-api" }

func (a *apiComponent) Start(_ context.Context) error {
	if a.mounted.Load() {
		return nil
	}
	db := a.db.DB()
	if db == nil {
		return fmt.Errorf("credential-api: database not started")
	}

	hasher, err := password.NewHasher(a.cfg.Auth.Password)
	if err != nil {
		return err
	}
	issuer, err := token.NewIssuer(a.cfg.Auth.JWT)
	if err != nil {
		return err
	}
	validator, err := token.NewValidator(a.cfg.Auth.JWT)
	if err != nil {
		return err
	}

	metrics, err := observability.NewCredentialMetrics(observability.Meter(serviceName))
	if err != nil {
		return err
	}
	svc, err := credential.NewService(user.NewGormRepository(db), hasher, issuer,
		credential.WithLogger(a.log),
		credential.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	routes := api.Routes{
		Handler:   api.NewUserHandler(svc),
		Validator: validator,
	}
	if a.cfg.RateLimit.Enabled {
		var client *redis.Client
		if a.redis != nil {
			client = a.redis.Client()
		}
		limiter := ratelimit.New(a.cfg.RateLimit, client, a.log)
		routes.LoginLimit = middleware.RateLimit(limiter, middleware.IPBasedKey, a.log)
	}
	api.RegisterRoutes(a.srv.GinEngine(), routes)

	a.mounted.Store(true)
	a.log.Info("Credential API mounted", map[string]interface{}{
		"auth":       a.cfg.Auth.Describe(),
		"rate_limit": a.cfg.RateLimit.Enabled,
	})
	return nil
}

func (a *apiComponent) Stop(context.Context) error { return nil }

func (a *apiComponent) Health(context.Context) component.Health {
	if !a.mounted.Load() {
		return component.Health{Name: a.Name(), Status: component.StatusUnhealthy, Message: "routes not mounted"}
	}
	return component.Health{Name: a.Name(), Status: component.StatusHealthy}
}
