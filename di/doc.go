// Package di provides a lifetime-aware dependency injection container.
//
// Services are registered into a Collection with one of three lifetimes
// (Transient, Scoped, Singleton) and resolved through a Provider. The
// container builds an immutable resolution plan per requested type, detects
// circular dependencies, tracks disposable instances for deterministic
// cleanup, and transparently recompiles hot resolution plans into
// specialized closures after repeated use.
//
// # Registration
//
//	c := di.NewCollection()
//	di.AddSingleton[Logger](c, NewConsoleLogger)
//	di.AddScoped[RequestContext](c, NewRequestContext)
//	di.AddTransient[Widget](c, NewWidget)
//	provider, err := c.Build()
//
// # Resolution
//
//	widget, err := di.Resolve[Widget](provider)
//
// Scopes share the root's registry and singleton store but own their scoped
// instances and transient disposables:
//
//	scope := provider.CreateScope()
//	defer scope.Close()
package di
