// Package database wraps GORM with connection pooling, retry on connect,
// health checks and versioned SQL migrations.
//
// Two drivers are supported, selected by Config.Driver:
//
//   - sqlite   (gorm.io/driver/sqlite, the default for local runs and tests)
//   - postgres (gorm.io/driver/postgres)
//
// Dialect errors are translated by GORM, so a unique-constraint violation
// surfaces as gorm.ErrDuplicatedKey regardless of driver:
//
//	comp := database.NewComponent(cfg.Database, log).
//	    WithMigrations(user.Migrations, user.MigrationsDir(cfg.Database.Driver))
//	registry.Register(comp)
package database
