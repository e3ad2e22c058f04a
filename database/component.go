package database

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/kbukum/userservice/component"
	"github.com/kbukum/userservice/database/migration"
	"github.com/kbukum/userservice/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component registers the connection pool with the lifecycle registry.
// Start connects (with retries) and optionally migrates; Stop closes the pool.
type Component struct {
	cfg Config
	log *logger.Logger
	db  *DB

	migrations fs.FS
	dir        string
}

func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("database")}
}

// WithMigrations sets the migration source used when Config.Migrate is on.
func (c *Component) WithMigrations(fsys fs.FS, dir string) *Component {
	c.migrations, c.dir = fsys, dir
	return c
}

// DB is nil until Start succeeds.
func (c *Component) DB() *DB { return c.db }

func (c *Component) Name() string { return "database" }

func (c *Component) Start(ctx context.Context) error {
	db, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db
	if !c.cfg.Migrate || c.migrations == nil {
		return nil
	}
	return c.migrate(db)
}

func (c *Component) migrate(db *DB) error {
	driver, err := migration.DriverFor(c.cfg.Driver)
	if err != nil {
		return err
	}
	if err := migration.Up(db.GormDB, c.migrations, c.dir, driver); err != nil {
		return fmt.Errorf("database migrate: %w", err)
	}
	v, dirty, err := migration.Version(db.GormDB, c.migrations, c.dir, driver)
	if err != nil {
		return fmt.Errorf("database migrate: %w", err)
	}
	c.log.Info("Database migrations applied", map[string]interface{}{"version": v, "dirty": dirty})
	return nil
}

func (c *Component) Stop(context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the pool. A ping slower than the slow query threshold is
// degraded.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.db == nil {
		h.Status, h.Message = component.StatusUnhealthy, "database not initialized"
		return h
	}
	st := c.db.CheckHealth(ctx)
	switch {
	case !st.Connected:
		h.Status, h.Message = component.StatusUnhealthy, "ping failed: "+st.Error
	case c.cfg.SlowQueryThreshold > 0 && st.Latency > c.cfg.SlowQueryThreshold:
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("slow ping: %s (%d/%d connections in use)", st.Latency, st.InUseConns, c.cfg.MaxOpenConns)
	}
	return h
}

func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.Migrate {
		details += " migrate=on"
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}
