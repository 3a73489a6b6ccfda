package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/dikit/component"
	"github.com/kbukum/dikit/config"
	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
	"github.com/kbukum/dikit/version"
)

// App wires configuration, logging, the container, and component
// lifecycle into one runner. The type parameter C is the config type;
// any struct embedding config.Settings satisfies the constraint.
//
//	app, err := bootstrap.NewApp(&cfg)
//	di.AddSingleton[*Store](app.Services, NewStore)
//	di.AddSingleton[component.Component](app.Services, NewHTTPServer)
//	app.Run(context.Background())
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C

	// Services is the registration surface. Register everything before
	// calling Run; the provider is built during startup.
	Services *di.Collection
	Logger   *logger.Logger

	engineOpts      di.Options
	gracefulTimeout time.Duration

	host *component.Host

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies
// defaults, validates, and initializes the logger. The config and the
// logger are pre-registered in Services as instances.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	settings := cfg.GetSettings()
	if settings.Version == "" {
		settings.Version = version.Short()
	}

	app := &App[C]{
		Name:            settings.Name,
		Version:         settings.Version,
		Cfg:             cfg,
		Services:        di.NewCollection(),
		engineOpts:      settings.Container.Options(),
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	if o.engineOpts != nil {
		app.engineOpts = *o.engineOpts
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(settings.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	di.AddInstance[C](app.Services, cfg)
	di.AddInstance[*config.Settings](app.Services, settings)
	di.AddInstance[*logger.Logger](app.Services, app.Logger)

	return app, nil
}

// Provider returns the built provider, or nil before startup.
func (a *App[C]) Provider() *di.Provider {
	if a.host == nil {
		return nil
	}
	return a.host.Provider()
}

// Run executes the full lifecycle for long-running services: build the
// provider, start components, run hooks, block on a shutdown signal,
// then shut down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full lifecycle. It does not
// block on signals; it runs the task and shuts down when the task
// finishes or a signal cancels the context. Use for CLI tools and batch
// jobs that want the same bootstrap as a service.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup builds the provider and starts all components.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	provider, err := a.Services.BuildWithOptions(a.engineOpts)
	if err != nil {
		return fmt.Errorf("building provider: %w", err)
	}
	a.host = component.NewHost(provider, a.Logger)

	if err := a.host.Start(ctx); err != nil {
		return fmt.Errorf("starting components: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields("error", err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook: %w", err)
	}

	a.Logger.Info("application started", logger.DurationFields("startup", time.Since(start)))
	return nil
}

// ReadyCheck verifies that every registered component is healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	if a.host == nil {
		return fmt.Errorf("application not started")
	}
	results, err := a.host.HealthAll(ctx)
	if err != nil {
		return err
	}
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// WaitForSignal blocks until SIGINT/SIGTERM or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own
// lifecycle instead of Run.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

func (a *App[C]) stop() error {
	a.Logger.Info("shutting down", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields("error", err.Error()))
		shutdownErr = err
	}

	if a.host != nil {
		if err := a.host.Stop(ctx); err != nil {
			a.Logger.Error("shutdown completed with errors", logger.Fields("error", err.Error()))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	a.Logger.Info("shutdown complete")
	return shutdownErr
}
