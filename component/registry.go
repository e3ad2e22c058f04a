package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/userservice/logger"
)

const (
	defaultStopTimeout   = 10 * time.Second
	defaultHealthTimeout = 2 * time.Second
)

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order, stops them in reverse
// and aggregates their health. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	byName  map[string]*entry

	stopTimeout   time.Duration
	healthTimeout time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStopTimeout bounds each component's Stop.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.stopTimeout = d }
}

// WithHealthTimeout bounds each component's Health check.
func WithHealthTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.healthTimeout = d }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName:        make(map[string]*entry),
		stopTimeout:   defaultStopTimeout,
		healthTimeout: defaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends c. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}
	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.byName[name] = e

	logger.Debug("Component registered", map[string]interface{}{logger.FieldComponent: name})
	return nil
}

// StartAll starts components in registration order and stops at the first
// failure. Components started before the failure stay started; StopAll
// stops them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Info("Starting components", map[string]interface{}{"count": len(r.entries)})
	for _, e := range r.entries {
		if e.started {
			continue
		}
		name := e.component.Name()
		begin := time.Now()
		if err := e.component.Start(ctx); err != nil {
			logger.Error("Component start failed", map[string]interface{}{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true
		logger.Debug("Component started", map[string]interface{}{
			logger.FieldComponent: name,
			logger.FieldDuration:  time.Since(begin).Milliseconds(),
		})
	}
	return nil
}

// StopAll stops started components in reverse order, giving each its own
// timeout. Every component is attempted; failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		err := e.component.Stop(stopCtx)
		cancel()
		e.started = false

		if err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			logger.Error("Component stop failed", map[string]interface{}{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
			continue
		}
		logger.Info("Component stopped", map[string]interface{}{logger.FieldComponent: name})
	}
	return errors.Join(errs...)
}

// HealthAll checks every component concurrently and returns the results in
// registration order. A check that outlives the health timeout is reported
// unhealthy.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	components := r.All()
	results := make([]Health, len(components))

	var wg sync.WaitGroup
	for i, c := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.check(ctx, c)
		}()
	}
	wg.Wait()
	return results
}

func (r *Registry) check(ctx context.Context, c Component) Health {
	checkCtx, cancel := context.WithTimeout(ctx, r.healthTimeout)
	defer cancel()

	done := make(chan Health, 1)
	begin := time.Now()
	go func() { done <- c.Health(checkCtx) }()

	var h Health
	select {
	case h = <-done:
	case <-checkCtx.Done():
		h = Health{Status: StatusUnhealthy, Message: "health check timed out"}
	}
	if h.Name == "" {
		h.Name = c.Name()
	}
	h.Latency = time.Since(begin)
	return h
}

// Ready reports whether no component is unhealthy. Degraded counts as ready.
func (r *Registry) Ready(ctx context.Context) (bool, []Health) {
	results := r.HealthAll(ctx)
	for _, h := range results {
		if h.Status == StatusUnhealthy {
			return false, results
		}
	}
	return true, results
}

// Get returns the component registered as name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byName[name]; ok {
		return e.component
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.component
	}
	return out
}
