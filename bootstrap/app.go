package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/userservice/component"
	"github.com/kbukum/userservice/logger"
)

// App owns the component registry and drives the process lifecycle:
//
//	start components → OnStart → OnConfigure → ready check → OnReady
//	→ wait (Run) or task (RunTask) → OnStop → stop components
//
// C is the application's config type.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error
	onStart         []Hook
	onReady         []Hook
	onStop          []Hook
}

// NewApp applies config defaults, validates, and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	s := collect(opts)
	base := cfg.GetServiceConfig()

	log := s.log
	if log == nil {
		logger.Init(base.Logging, base.Name)
		log = logger.GetGlobalLogger()
	}

	summary := NewSummary(base.Name, base.Version)
	if s.summary != nil {
		summary.out = s.summary
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(s.registryOpts...),
		Logger:          log,
		Summary:         summary,
		gracefulTimeout: s.shutdown,
	}, nil
}

// RegisterComponent appends c to the registry; start order is registration
// order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure adds a callback that wires business objects once the
// infrastructure components are running.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck returns an error naming each unhealthy component. Degraded is
// ready.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	ready, results := a.Components.Ready(ctx)
	if ready {
		return nil
	}
	var failing []string
	for _, h := range results {
		if h.Status != component.StatusUnhealthy {
			continue
		}
		if h.Message == "" {
			failing = append(failing, h.Name)
		} else {
			failing = append(failing, h.Name+"("+h.Message+")")
		}
	}
	return fmt.Errorf("unhealthy components: [%s]", strings.Join(failing, " "))
}

// Run starts the application and blocks until SIGINT, SIGTERM or ctx is
// done, then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	return a.RunTask(ctx, func(ctx context.Context) error {
		a.Logger.Info("Application ready, waiting for shutdown signal")
		<-ctx.Done()
		a.Logger.Info("Shutdown requested", map[string]interface{}{"cause": context.Cause(ctx).Error()})
		return nil
	})
}

// RunTask is Run for a finite job: task gets a context canceled on
// SIGINT/SIGTERM, and shutdown follows its return. The task's error wins
// over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Warn("Cleanup after failed startup reported errors", map[string]interface{}{
				logger.FieldError: stopErr.Error(),
			})
		}
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	cancel()

	stopErr := a.stop()
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

type phase struct {
	name string
	run  func(context.Context) error
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	phases := []phase{
		{"initialization", a.Components.StartAll},
		{"onStart hook", func(ctx context.Context) error { return runHooks(ctx, a.onStart) }},
		{"configuration", a.configure},
		{"ready check", a.warnIfNotReady},
		{"onReady hook", func(ctx context.Context) error { return runHooks(ctx, a.onReady) }},
	}
	for _, p := range phases {
		if err := p.run(ctx); err != nil {
			return fmt.Errorf("%s failed: %w", p.name, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.Components)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// warnIfNotReady never fails startup; an unhealthy dependency shows up in
// /readyz instead.
func (a *App[C]) warnIfNotReady(ctx context.Context) error {
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
	return nil
}

func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hookErr := runHooks(ctx, a.onStop)
	if hookErr != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{logger.FieldError: hookErr.Error()})
	}
	compErr := a.Components.StopAll(ctx)
	if compErr != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{logger.FieldError: compErr.Error()})
	}

	a.Logger.Info("Application shutdown complete")
	if hookErr != nil {
		return hookErr
	}
	return compErr
}
