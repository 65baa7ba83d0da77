package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"nubes-server/core/config"
	"nubes-server/core/logger"
	"nubes-server/core/middleware/rayid"
	"nubes-server/core/templates"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyBootstrapped is returned by Bootstrap while a previous bootstrap
// has not been stopped.
var ErrAlreadyBootstrapped = errors.New("already bootstrapped")

// Option configures a Nubes bootstrapper.
type Option func(*Nubes)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(n *Nubes) {
		n.logger = l
	}
}

// WithPackages sets the package registry controllers, fixtures and verticles
// are discovered from. Defaults to DefaultPackages().
func WithPackages(p *Packages) Option {
	return func(n *Nubes) {
		n.packages = p
	}
}

// Nubes is the default bootstrapper. It owns the service and template engine
// registries and produces a fiber router from the configured packages.
type Nubes struct {
	cfg      config.Config
	logger   *zap.Logger
	packages *Packages

	mu           sync.Mutex
	serviceNames []string
	services     map[string]any
	engines      map[string]fiber.Views
	running      bool
	cleanup      []cleanupStep
	// released holds services whose Stop ran since they were last started.
	released map[string]bool
}

type cleanupStep struct {
	kind string
	name string
	fn   func(ctx context.Context) error
}

// New creates a bootstrapper bound to a resolved configuration. At least one
// controller package is required.
func New(cfg config.Config, opts ...Option) (*Nubes, error) {
	if len(cfg.ControllerPackages) == 0 {
		return nil, fmt.Errorf("%w: controller-packages", config.ErrMissingConfiguration)
	}

	n := &Nubes{
		cfg:      cfg,
		services: make(map[string]any),
		engines:  make(map[string]fiber.Views),
		released: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	if n.packages == nil {
		n.packages = DefaultPackages()
	}
	return n, nil
}

// RegisterService registers instance under name. A second registration under
// the same name replaces the first and moves it to the end of the start order.
func (n *Nubes) RegisterService(name string, instance any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.services[name]; exists {
		for i, existing := range n.serviceNames {
			if existing == name {
				n.serviceNames = append(n.serviceNames[:i], n.serviceNames[i+1:]...)
				break
			}
		}
	}
	n.serviceNames = append(n.serviceNames, name)
	n.services[name] = instance
	delete(n.released, name)
}

// RegisterTemplateEngine registers engine for templates with extension key.
func (n *Nubes) RegisterTemplateEngine(key string, engine fiber.Views) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engines[key] = engine
}

// ServiceNames returns registered service names in start order.
func (n *Nubes) ServiceNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.serviceNames...)
}

// TemplateEngines returns the registered engine keys, sorted.
func (n *Nubes) TemplateEngines() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engineKeys()
}

func (n *Nubes) engineKeys() []string {
	keys := make([]string, 0, len(n.engines))
	for key := range n.engines {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Bootstrap starts services, sets up fixtures, deploys verticles and mounts
// the controllers of every configured controller package on a new router.
// Anything started before a failure or a cancellation is stopped again
// before Bootstrap returns.
func (n *Nubes) Bootstrap(ctx context.Context) (*fiber.App, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return nil, ErrAlreadyBootstrapped
	}

	env := &Env{
		Config:          n.cfg,
		Logger:          n.logger,
		Services:        newServices(n.serviceNames, n.services),
		TemplateEngines: n.engineKeys(),
	}

	app, err := n.bootstrap(ctx, env)
	if err != nil {
		rollbackCtx := context.WithoutCancel(ctx)
		if rbErr := n.runCleanup(rollbackCtx); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return nil, err
	}

	n.running = true
	n.logger.Info("Bootstrap complete",
		zap.Strings("services", env.Services.Names()),
		zap.Strings("template_engines", env.TemplateEngines),
	)
	return app, nil
}

func (n *Nubes) bootstrap(ctx context.Context, env *Env) (*fiber.App, error) {
	// 1. Services
	for _, name := range n.serviceNames {
		instance := n.services[name]
		delete(n.released, name)
		if starter, ok := instance.(Starter); ok {
			if err := starter.Start(ctx); err != nil {
				return nil, fmt.Errorf("start service %s: %w", name, err)
			}
			n.logger.Debug("Service started", zap.String("service", name))
		}
		if stopper, ok := instance.(Stopper); ok {
			n.push("service", name, n.stopService(name, stopper))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Fixtures
	for _, pkg := range n.cfg.FixturePackages {
		for _, fixture := range n.packages.Fixtures(pkg) {
			if err := fixture.SetUp(ctx, env); err != nil {
				return nil, fmt.Errorf("set up fixture %s: %w", fixture.Name(), err)
			}
			f := fixture
			n.push("fixture", f.Name(), func(ctx context.Context) error {
				return f.TearDown(ctx, env)
			})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Verticles
	if err := n.deployVerticles(ctx, env); err != nil {
		return nil, err
	}

	// 4. Router
	app := n.newRouter(env)
	mounted := 0
	for _, pkg := range n.cfg.ControllerPackages {
		controllers := n.packages.Controllers(pkg)
		if len(controllers) == 0 {
			n.logger.Warn("No controllers found in package", zap.String("package", pkg))
			continue
		}
		for _, c := range controllers {
			if !c.IsEnabled() {
				n.logger.Debug("Controller disabled", zap.String("controller", c.Name()))
				continue
			}
			if err := c.Load(app, env); err != nil {
				return nil, fmt.Errorf("load controller %s: %w", c.Name(), err)
			}
			mounted++
			n.logger.Debug("Controller loaded", zap.String("controller", c.Name()), zap.String("package", pkg))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n.logger.Info("Router ready", zap.Int("controllers", mounted))
	return app, nil
}

// deployVerticles starts every verticle of the verticle package concurrently.
// Verticles that started are stopped on stop, in reverse registration order.
func (n *Nubes) deployVerticles(ctx context.Context, env *Env) error {
	verticles := n.packages.Verticles(n.cfg.VerticlePackage)
	if len(verticles) == 0 {
		return nil
	}

	started := make([]bool, len(verticles))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range verticles {
		g.Go(func() error {
			if err := v.Start(gctx, env); err != nil {
				return fmt.Errorf("deploy verticle %s: %w", v.Name(), err)
			}
			started[i] = true
			return nil
		})
	}
	err := g.Wait()

	for i, v := range verticles {
		if started[i] {
			n.push("verticle", v.Name(), v.Stop)
		}
	}
	if err != nil {
		return err
	}

	n.logger.Info("Verticles deployed", zap.Int("count", len(verticles)))
	return ctx.Err()
}

func (n *Nubes) newRouter(env *Env) *fiber.App {
	cfg := fiber.Config{
		AppName:               "nubes",
		DisableStartupMessage: true, // the lifecycle logs its own startup message
	}
	if len(n.engines) > 0 {
		cfg.Views = templates.NewSet(n.engines)
	}

	app := fiber.New(cfg)
	app.Use(rayid.New())
	app.Use(logger.Requests(env.Logger))
	return app
}

func (n *Nubes) push(kind, name string, fn func(ctx context.Context) error) {
	n.cleanup = append(n.cleanup, cleanupStep{kind: kind, name: name, fn: fn})
}

// runCleanup runs and clears the cleanup stack in reverse order. Every step
// runs even if an earlier one fails.
func (n *Nubes) runCleanup(ctx context.Context) error {
	var errs []error
	for i := len(n.cleanup) - 1; i >= 0; i-- {
		step := n.cleanup[i]
		if err := step.fn(ctx); err != nil {
			n.logger.Error("Stop step failed",
				zap.String("kind", step.kind),
				zap.String("name", step.name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("stop %s %s: %w", step.kind, step.name, err))
		}
	}
	n.cleanup = nil
	return errors.Join(errs...)
}

func (n *Nubes) stopService(name string, stopper Stopper) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n.released[name] = true
		return stopper.Stop(ctx)
	}
}

// releaseServices stops, in reverse registration order, every registered
// service that is not already stopped.
func (n *Nubes) releaseServices(ctx context.Context) error {
	var errs []error
	for i := len(n.serviceNames) - 1; i >= 0; i-- {
		name := n.serviceNames[i]
		stopper, ok := n.services[name].(Stopper)
		if !ok || n.released[name] {
			continue
		}
		if err := n.stopService(name, stopper)(ctx); err != nil {
			n.logger.Error("Failed to release service", zap.String("service", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("release service %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Stop undeploys verticles, tears down fixtures and stops services in the
// reverse order they were started. Registered services that were never
// started, or that a failed bootstrap did not reach, are stopped too. Each
// service is stopped at most once until it is started again.
func (n *Nubes) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var err error
	if n.running {
		n.running = false
		err = n.runCleanup(ctx)
	}
	err = errors.Join(err, n.releaseServices(ctx))
	if err == nil {
		n.logger.Info("Bootstrapper stopped")
	}
	return err
}
