// Package component defines the lifecycle contract for application
// components and a Host that runs them out of the container.
//
// Components register as Singleton implementations of Component; the
// Host resolves the full set with a slice resolution, starts them in
// registration order, and stops them in reverse before closing the
// provider.
//
//	c := di.NewCollection()
//	di.AddSingleton[component.Component](c, newHTTPServer)
//	di.AddSingleton[component.Component](c, newWorkerPool)
//	p, _ := c.Build()
//
//	host := component.NewHost(p, log)
//	err := host.Start(ctx)
package component
