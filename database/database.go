package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/resilience"
	"github.com/kbukum/userservice/util"
)

// DB is an open, pinged connection pool.
type DB struct {
	GormDB *gorm.DB

	sql       *sql.DB
	driver    string
	log       *logger.Logger
	closeOnce sync.Once
	closeErr  error
}

var dialectors = map[string]func(dsn string) gorm.Dialector{
	DriverSQLite:   sqlite.Open,
	DriverPostgres: postgres.Open,
}

// New connects and pings, retrying only errors IsConnectionError accepts.
// A bad DSN or rejected credentials fail on the first attempt.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(log, cfg.SlowQueryThreshold, parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	}

	attempts := 0
	retry := resilience.RetryConfig{
		MaxAttempts:    cfg.MaxRetries,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Jitter:         0.2,
		RetryIf:        IsConnectionError,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Warn("Database connection attempt failed, retrying", map[string]interface{}{
				"attempt":         attempt,
				"backoff":         backoff.String(),
				logger.FieldError: err.Error(),
			})
		},
	}
	db, err := resilience.Retry(ctx, retry, func() (*DB, error) {
		attempts++
		return open(ctx, cfg, gormCfg)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", err)
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}
	db.log = log

	log.Info("Database connection established", map[string]interface{}{
		"driver":   cfg.Driver,
		"dsn":      util.MaskDSN(cfg.DSN),
		"attempts": attempts,
	})
	return db, nil
}

// open makes one attempt and leaves nothing open on failure.
func open(ctx context.Context, cfg Config, gormCfg *gorm.Config) (*DB, error) {
	gdb, err := gorm.Open(dialectors[cfg.Driver](cfg.DSN), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return &DB{GormDB: gdb, sql: sqlDB, driver: cfg.Driver}, nil
}

func (d *DB) Driver() string { return d.driver }

// WithContext starts a GORM session bound to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB { return d.GormDB.WithContext(ctx) }

func (d *DB) PingContext(ctx context.Context) error { return d.sql.PingContext(ctx) }

// Close closes the pool once; later calls return the first result.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		d.log.Info("Closing database connection")
		d.closeErr = d.sql.Close()
	})
	return d.closeErr
}

// HealthStatus is a ping result plus pool statistics.
type HealthStatus struct {
	Connected  bool          `json:"connected"`
	Error      string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency"`
	OpenConns  int           `json:"open_connections"`
	InUseConns int           `json:"in_use_connections"`
	IdleConns  int           `json:"idle_connections"`
}

func (d *DB) CheckHealth(ctx context.Context) HealthStatus {
	start := time.Now()
	err := d.sql.PingContext(ctx)
	st := HealthStatus{Connected: err == nil, Latency: time.Since(start)}
	if err != nil {
		st.Error = err.Error()
		return st
	}
	stats := d.sql.Stats()
	st.OpenConns, st.InUseConns, st.IdleConns = stats.OpenConnections, stats.InUse, stats.Idle
	return st
}
