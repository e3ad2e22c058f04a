// Package bootstrap runs a service through its lifecycle: validate config,
// start registered components in order, run configure callbacks that wire
// the business layer, print a startup summary, block until SIGINT/SIGTERM
// and stop everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
//	    // build repositories, services and routes
//	    return nil
//	})
//	err = app.Run(ctx)
//
// RunTask uses the same sequence for one-shot commands such as applying
// migrations.
package bootstrap
