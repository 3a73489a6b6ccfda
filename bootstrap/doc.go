// Package bootstrap assembles a complete application: config
// validation, logger setup, container build, component lifecycle, and
// signal handling.
//
// A typical main:
//
//	var cfg AppConfig
//	if err := config.Load("my-app", &cfg); err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	di.AddSingleton[*Store](app.Services, NewStore)
//	di.AddSingleton[component.Component](app.Services, NewHTTPServer)
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
