package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kbukum/userservice/clock"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/redis"
	"github.com/kbukum/userservice/resilience"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is the time until the current window closes.
	RetryAfter time.Duration
}

// Limiter counts an attempt for key and reports whether it may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// New returns a RedisLimiter when client is non-nil and a MemoryLimiter
// otherwise.
func New(cfg Config, client *redis.Client, log *logger.Logger) Limiter {
	if client != nil {
		return NewRedisLimiter(client, cfg, log)
	}
	return NewMemoryLimiter(cfg)
}

func decide(limit int, count int64, retryAfter time.Duration) Decision {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:    count <= int64(limit),
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: retryAfter,
	}
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed window limiter. Safe for concurrent use.
type MemoryLimiter struct {
	cfg   Config
	clock clock.Clock

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// MemoryOption configures a MemoryLimiter.
type MemoryOption func(*MemoryLimiter)

// WithClock sets the clock used to open and close windows.
func WithClock(c clock.Clock) MemoryOption {
	return func(l *MemoryLimiter) { l.clock = c }
}

// NewMemoryLimiter creates a MemoryLimiter.
func NewMemoryLimiter(cfg Config, opts ...MemoryOption) *MemoryLimiter {
	cfg.ApplyDefaults()
	l := &MemoryLimiter{
		cfg:     cfg,
		clock:   clock.System(),
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.clock.Now()
	return l
}

// Allow implements Limiter. It never returns an error.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.Window {
		l.sweep(now)
	}

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.cfg.Window)}
		l.windows[key] = w
	}
	w.count++
	return decide(l.cfg.Attempts, w.count, w.resetAt.Sub(now)), nil
}

// Len returns the number of open windows.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

// RedisLimiter is a fixed window limiter whose counters live in Redis, so
// every instance sees the same attempt count. A circuit breaker stops
// calling Redis after repeated failures.
type RedisLimiter struct {
	client  *redis.Client
	cfg     Config
	log     *logger.Logger
	breaker *resilience.CircuitBreaker
}

// NewRedisLimiter creates a RedisLimiter.
func NewRedisLimiter(client *redis.Client, cfg Config, log *logger.Logger) *RedisLimiter {
	cfg.ApplyDefaults()
	log = log.WithComponent("ratelimit")

	breakerCfg := resilience.DefaultBreakerConfig("ratelimit-redis")
	breakerCfg.OnStateChange = func(name string, from, to resilience.State) {
		log.Warn("Rate limit store circuit changed state", map[string]interface{}{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		})
	}
	return &RedisLimiter{
		client:  client,
		cfg:     cfg,
		log:     log,
		breaker: resilience.NewCircuitBreaker(breakerCfg),
	}
}

// Allow implements Limiter. Redis failures allow the attempt and are
// logged; only a done context is returned as an error.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	var (
		count int64
		ttl   time.Duration
	)
	err := l.breaker.Execute(func() error {
		var incrErr error
		count, ttl, incrErr = l.client.IncrWindow(ctx, l.cfg.KeyPrefix+key, l.cfg.Window)
		return incrErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}
		if !errors.Is(err, resilience.ErrOpen) {
			l.log.WithError(err).Warn("Rate limit store unavailable, allowing attempt")
		}
		return Decision{Allowed: true, Limit: l.cfg.Attempts, Remaining: l.cfg.Attempts}, nil
	}
	return decide(l.cfg.Attempts, count, ttl), nil
}
