// Command userservice runs the credential HTTP service.
//
//	userservice [flags]                   serve (default)
//	userservice [flags] migrate up|down|version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kbukum/userservice/bootstrap"
	"github.com/kbukum/userservice/database"
	"github.com/kbukum/userservice/database/migration"
	"github.com/kbukum/userservice/observability"
	"github.com/kbukum/userservice/redis"
	"github.com/kbukum/userservice/server"
	"github.com/kbukum/userservice/user"
	"github.com/kbukum/userservice/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configFile, envFile string
	var showVersion bool

	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flags.StringVarP(&configFile, "config", "c", "", "path to config.yaml (default: ./config.yaml, ./config/config.yaml, /etc/userservice/config.yaml)")
	flags.StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env)")
	flags.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Println(serviceName, version.Get().String())
		return nil
	}

	cfg, err := loadConfig(configFile, envFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rest := flags.Args()
	switch {
	case len(rest) == 0 || rest[0] == "serve":
		return serve(ctx, cfg)
	case rest[0] == "migrate":
		direction := "up"
		if len(rest) > 1 {
			direction = rest[1]
		}
		return migrate(ctx, cfg, direction)
	default:
		return fmt.Errorf("unknown command %q (want serve or migrate)", rest[0])
	}
}

func serve(ctx context.Context, cfg *AppConfig) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, observability.Resource{
		ServiceName:    app.Name,
		ServiceVersion: app.Version,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	app.OnStop(func(ctx context.Context) error { return shutdownTelemetry(ctx) })

	dbComp := database.NewComponent(cfg.Database, app.Logger).
		WithMigrations(user.Migrations, user.MigrationsDir(cfg.Database.Driver))
	if err := app.RegisterComponent(dbComp); err != nil {
		return err
	}

	var redisComp *redis.Component
	if cfg.Redis.Enabled {
		redisComp = redis.NewComponent(cfg.Redis, app.Logger)
		if err := app.RegisterComponent(redisComp); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg.Server, app.Logger)
	if err != nil {
		return err
	}
	httpMetrics, err := observability.NewHTTPMetrics(observability.Meter(serviceName))
	if err != nil {
		return err
	}
	srv.ApplyMiddleware(httpMetrics)
	srv.RegisterDefaultEndpoints(app.Name, app.Components.HealthAll, func(ctx context.Context) bool {
		return app.ReadyCheck(ctx) == nil
	})

	if err := app.RegisterComponent(&apiComponent{
		cfg:   cfg,
		db:    dbComp,
		redis: redisComp,
		srv:   srv,
		log:   app.Logger,
	}); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	deps := []string{"database"}
	if redisComp != nil {
		deps = append(deps, "redis")
	}
	app.Summary.TrackBusinessComponent("CredentialService", "service", deps...)

	return app.Run(ctx)
}

func migrate(ctx context.Context, cfg *AppConfig, direction string) error {
	cfg.Database.Migrate = false
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	dbComp := database.NewComponent(cfg.Database, app.Logger)
	if err := app.RegisterComponent(dbComp); err != nil {
		return err
	}

	return app.RunTask(ctx, func(context.Context) error {
		driverFunc, err := migration.DriverFor(cfg.Database.Driver)
		if err != nil {
			return err
		}
		gormDB := dbComp.DB().GormDB
		dir := user.MigrationsDir(cfg.Database.Driver)

		switch direction {
		case "up":
			err = migration.Up(gormDB, user.Migrations, dir, driverFunc)
		case "down":
			err = migration.Down(gormDB, user.Migrations, dir, driverFunc)
		case "version":
		default:
			return fmt.Errorf("unknown migrate direction %q (want up, down or version)", direction)
		}
		if err != nil {
			return err
		}

		v, dirty, err := migration.Version(gormDB, user.Migrations, dir, driverFunc)
		if err != nil {
			return err
		}
		app.Logger.Info("Schema version", map[string]interface{}{
			"direction": direction,
			"version":   v,
			"dirty":     dirty,
		})
		return nil
	})
}
