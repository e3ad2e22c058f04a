package database

import (
	"bytes"
	"context"
	"database/sql/driver"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/userservice/logger"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want %q", cfg.Driver, DriverSQLite)
	}
	if cfg.DSN != "userservice.db" {
		t.Errorf("DSN = %q, want userservice.db", cfg.DSN)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 {
		t.Errorf("pool = %d/%d, want 25/5", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != time.Hour || cfg.ConnMaxIdleTime != 5*time.Minute {
		t.Errorf("lifetimes = %s/%s", cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.SlowQueryThreshold != 200*time.Millisecond || cfg.LogLevel != "warn" {
		t.Errorf("slow=%s level=%q", cfg.SlowQueryThreshold, cfg.LogLevel)
	}
}

func TestConfig_ApplyDefaults_PostgresNeedsDSN(t *testing.T) {
	cfg := Config{Driver: DriverPostgres}
	cfg.ApplyDefaults()

	if cfg.DSN != "" {
		t.Errorf("postgres DSN should not be defaulted, got %q", cfg.DSN)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "DSN") {
		t.Errorf("expected DSN error, got %v", err)
	}
}

func TestConfig_ApplyDefaults_PreservesExistingValues(t *testing.T) {
	cfg := Config{
		Driver:       DriverPostgres,
		DSN:          "postgres://localhost/users",
		MaxOpenConns: 50,
		MaxIdleConns: 10,
		MaxRetries:   2,
		LogLevel:     "info",
	}
	cfg.ApplyDefaults()

	if cfg.MaxOpenConns != 50 || cfg.MaxIdleConns != 10 || cfg.MaxRetries != 2 || cfg.LogLevel != "info" {
		t.Errorf("ApplyDefaults overwrote values: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Driver = "mysql" }, "not supported"},
		{"max open zero", func(c *Config) { c.MaxOpenConns = 0 }, "max_open_conns"},
		{"max idle zero", func(c *Config) { c.MaxIdleConns = 0 }, "max_idle_conns"},
		{"idle above open", func(c *Config) { c.MaxIdleConns = 30 }, "must be <="},
		{"negative lifetime", func(c *Config) { c.ConnMaxLifetime = -time.Second }, "conn_max_lifetime"},
		{"negative idle time", func(c *Config) { c.ConnMaxIdleTime = -1 }, "conn_max_idle_time"},
		{"zero idle time", func(c *Config) { c.ConnMaxIdleTime = 0 }, ""},
		{"negative slow threshold", func(c *Config) { c.SlowQueryThreshold = -1 }, "slow_query_threshold"},
		{"zero slow threshold", func(c *Config) { c.SlowQueryThreshold = 0 }, ""},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "max_retries"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("SILENT") != parseLogLevel("silent") {
		t.Error("log level parsing should be case-insensitive")
	}
	if parseLogLevel("") != parseLogLevel("warn") {
		t.Error("unknown level should fall back to warn")
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused message", errString("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"reset message", errString("read: connection reset by peer"), true},
		{"starting up", errString("FATAL: the database system is starting up"), true},
		{"bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"errno", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"net op error", &net.OpError{Op: "dial", Net: "tcp", Err: errString("no route")}, true},
		{"pg cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"pg auth failure", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, false},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite open", errString("unable to open database file"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.want {
				t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestQueryLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf}, "test")
	q := newGormLogger(log, 10*time.Millisecond, gormlogger.Warn)
	ctx := logger.ContextWithRequestID(context.Background(), "req-1")
	query := func() (string, int64) { return "SELECT * FROM users WHERE username = ?", 1 }

	q.Trace(ctx, time.Now(), query, nil)
	if buf.Len() != 0 {
		t.Errorf("fast query logged at warn level: %s", buf.String())
	}

	q.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Errorf("not-found logged as a failure: %s", buf.String())
	}

	q.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	out := buf.String()
	if !strings.Contains(out, "Slow query") || !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("slow query line = %s", out)
	}

	buf.Reset()
	q.Trace(ctx, time.Now(), query, errString("disk I/O error"))
	if !strings.Contains(buf.String(), "Query failed") {
		t.Errorf("failed query line = %s", buf.String())
	}

	buf.Reset()
	q.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errString("disk I/O error"))
	if buf.Len() != 0 {
		t.Errorf("silent mode logged: %s", buf.String())
	}
}

type errString string

func (e errString) Error() string { return string(e) }
