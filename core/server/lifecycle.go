package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"nubes-server/core/bootstrap"
	"nubes-server/core/config"
	"nubes-server/core/loader"
	"nubes-server/core/templates"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Bootstrapper produces the router the listener serves. It owns the service
// and template engine registries.
//
// A Bootstrap call that fails must leave nothing running. Stop releases what
// a successful Bootstrap started and is a no-op otherwise.
type Bootstrapper interface {
	loader.Registrar
	templates.Registrar
	Bootstrap(ctx context.Context) (*fiber.App, error)
	Stop(ctx context.Context) error
}

// BootstrapperFactory creates the bootstrapper for a resolved configuration.
type BootstrapperFactory func(cfg config.Config, logger *zap.Logger) (Bootstrapper, error)

// DefaultBootstrapper creates a bootstrap.Nubes over the process-wide package
// registry.
func DefaultBootstrapper(cfg config.Config, logger *zap.Logger) (Bootstrapper, error) {
	n, err := bootstrap.New(cfg, bootstrap.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(lc *Lifecycle) {
		lc.logger = l
	}
}

// WithCatalog sets the service catalog. Defaults to loader.Default().
func WithCatalog(c *loader.Catalog) Option {
	return func(lc *Lifecycle) {
		lc.catalog = c
	}
}

// WithBootstrapper sets the bootstrapper factory. Defaults to DefaultBootstrapper.
func WithBootstrapper(f BootstrapperFactory) Option {
	return func(lc *Lifecycle) {
		lc.newBootstrapper = f
	}
}

// WithListenFunc sets how the listener is opened. Defaults to net.Listen.
func WithListenFunc(f ListenFunc) Option {
	return func(lc *Lifecycle) {
		lc.listen = f
	}
}

// WithRegisterer registers lifecycle metrics with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(lc *Lifecycle) {
		lc.registerer = r
	}
}

// Lifecycle owns the network listener and drives the bootstrapper through
// init, start and stop. At most one of Init, Start and Stop runs at a time;
// a concurrent call fails with ErrOperationInProgress.
type Lifecycle struct {
	raw    config.Config
	cfg    config.Config
	logger *zap.Logger

	catalog         *loader.Catalog
	newBootstrapper BootstrapperFactory
	listen          ListenFunc
	registerer      prometheus.Registerer
	metrics         *Metrics

	busy  atomic.Bool
	state atomic.Int32

	// boot is only touched while busy is held.
	boot Bootstrapper

	mu     sync.Mutex
	app    *fiber.App
	ln     *onceListener
	served chan error
}

// New creates a lifecycle in the stopped state for cfg. cfg is resolved
// during Init.
func New(cfg config.Config, opts ...Option) *Lifecycle {
	lc := &Lifecycle{raw: cfg}
	for _, opt := range opts {
		opt(lc)
	}
	if lc.logger == nil {
		lc.logger = zap.NewNop()
	}
	if lc.catalog == nil {
		lc.catalog = loader.Default()
	}
	if lc.newBootstrapper == nil {
		lc.newBootstrapper = DefaultBootstrapper
	}
	if lc.listen == nil {
		lc.listen = net.Listen
	}
	lc.metrics = NewMetrics(lc.registerer)
	lc.metrics.setState(StateStopped)
	return lc
}

// State returns the current state.
func (lc *Lifecycle) State() State {
	return State(lc.state.Load())
}

// Addr returns the bound address while listening, or "".
func (lc *Lifecycle) Addr() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.ln == nil {
		return ""
	}
	return lc.ln.Addr().String()
}

// Config returns the resolved configuration. It is the zero value before a
// successful Init.
func (lc *Lifecycle) Config() config.Config {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.cfg
}

func (lc *Lifecycle) acquire() bool {
	return lc.busy.CompareAndSwap(false, true)
}

func (lc *Lifecycle) release() {
	lc.busy.Store(false)
}

func (lc *Lifecycle) setState(s State) {
	prev := State(lc.state.Swap(int32(s)))
	lc.metrics.setState(s)
	if prev != s {
		lc.logger.Debug("Lifecycle state changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", s),
		)
	}
}

// Init resolves and validates the configuration, creates the bootstrapper and
// registers the configured services and template engines into it. Calling
// Init once configured does nothing.
func (lc *Lifecycle) Init(ctx context.Context) error {
	if !lc.acquire() {
		return ErrOperationInProgress
	}
	defer lc.release()

	return lc.init(ctx)
}

func (lc *Lifecycle) init(ctx context.Context) error {
	if lc.boot != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	boot, cfg, err := lc.configure(ctx)
	if err != nil {
		lc.setState(StateFailed)
		lc.metrics.failure(PhaseInit)
		lc.logger.Error("Initialization failed", zap.Error(err))
		return fmt.Errorf("init: %w", err)
	}

	lc.mu.Lock()
	lc.cfg = cfg
	lc.mu.Unlock()
	lc.boot = boot
	lc.setState(StateConfigured)
	return nil
}

func (lc *Lifecycle) configure(ctx context.Context) (Bootstrapper, config.Config, error) {
	cfg := config.Resolve(lc.raw)
	if err := config.Validate(cfg); err != nil {
		return nil, cfg, err
	}

	services, err := cfg.ServiceDescriptors()
	if err != nil {
		return nil, cfg, err
	}

	boot, err := lc.newBootstrapper(cfg, lc.logger)
	if err != nil {
		return nil, cfg, fmt.Errorf("create bootstrapper: %w", err)
	}

	report, err := loader.New(lc.catalog, cfg.ServiceFailurePolicy, lc.logger).RegisterAll(services, boot)
	if err != nil {
		// Services registered before the failure are already built.
		if stopErr := stopBootstrapper(ctx, boot, cfg.StopTimeout); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("release services: %w", stopErr))
		}
		return nil, cfg, err
	}
	if len(report.Skipped) > 0 {
		lc.logger.Warn("Some services were skipped",
			zap.Int("skipped", len(report.Skipped)),
			zap.Int("registered", len(report.Registered)),
		)
	}

	templates.NewRegistrar(cfg.ViewsDir, lc.logger).RegisterAll(cfg.Templates, boot)
	return boot, cfg, nil
}

// Start initializes if needed, bootstraps the router within the configured
// bootstrap timeout and starts listening on host:port. On failure the state
// is StateFailed and no listener is left open.
func (lc *Lifecycle) Start(ctx context.Context) error {
	if !lc.acquire() {
		return ErrOperationInProgress
	}
	defer lc.release()

	st := lc.State()
	if st == StateListening {
		return ErrAlreadyStarted
	}
	if !st.canStart() {
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, st)
	}

	begin := time.Now()
	if err := lc.init(ctx); err != nil {
		return err
	}

	lc.setState(StateStarting)
	cfg := lc.Config()

	app, abandoned, err := lc.bootstrap(ctx, cfg.BootstrapTimeout, cfg.StopTimeout)
	if err != nil {
		err = fmt.Errorf("bootstrap: %w", err)
		if abandoned {
			// discard stops it once the call returns.
			lc.boot = nil
		} else if stopErr := lc.releaseBootstrapper(ctx, cfg.StopTimeout); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("stop bootstrapper: %w", stopErr))
		}
		return lc.failStart(PhaseBootstrap, err)
	}

	raw, err := lc.listen("tcp", cfg.Addr())
	if err != nil {
		bindErr := error(&BindError{Addr: cfg.Addr(), Err: err})
		// The router was produced but will never be served.
		if stopErr := lc.releaseBootstrapper(ctx, cfg.StopTimeout); stopErr != nil {
			bindErr = errors.Join(bindErr, fmt.Errorf("stop bootstrapper: %w", stopErr))
		}
		return lc.failStart(PhaseBind, bindErr)
	}

	lc.serve(app, &onceListener{Listener: raw})
	lc.setState(StateListening)
	lc.metrics.observe(OperationStart, begin)
	lc.logger.Info("Server listening",
		zap.String("addr", raw.Addr().String()),
		zap.Int("port", cfg.Port),
	)
	return nil
}

// releaseBootstrapper stops the bootstrapper and forgets it, so the next Start
// initializes from scratch.
func (lc *Lifecycle) releaseBootstrapper(ctx context.Context, timeout time.Duration) error {
	boot := lc.boot
	lc.boot = nil
	if boot == nil {
		return nil
	}
	return stopBootstrapper(ctx, boot, timeout)
}

func stopBootstrapper(ctx context.Context, boot Bootstrapper, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = config.DefaultStopTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return boot.Stop(stopCtx)
}

func (lc *Lifecycle) failStart(phase string, err error) error {
	lc.setState(StateFailed)
	lc.metrics.failure(phase)
	lc.logger.Error("Server failed to start", zap.String("phase", phase), zap.Error(err))
	return err
}

type bootResult struct {
	app *fiber.App
	err error
}

// bootstrap runs the bootstrapper bounded by timeout. If the deadline passes
// first, the call is abandoned: its context is cancelled and the bootstrapper
// is stopped in the background once the call returns.
func (lc *Lifecycle) bootstrap(ctx context.Context, timeout, stopTimeout time.Duration) (*fiber.App, bool, error) {
	bctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	boot := lc.boot
	done := make(chan bootResult, 1)
	go func() {
		app, err := boot.Bootstrap(bctx)
		done <- bootResult{app: app, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.app == nil {
			return nil, false, errors.New("bootstrapper returned no router")
		}
		return r.app, false, r.err
	case <-bctx.Done():
		go lc.discard(boot, done, stopTimeout)
		if ctx.Err() != nil {
			return nil, true, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w after %s", ErrBootstrapTimeout, timeout)
	}
}

// discard waits for an abandoned bootstrap and stops the bootstrapper,
// releasing whatever it produced and the services registered into it.
func (lc *Lifecycle) discard(boot Bootstrapper, done <-chan bootResult, stopTimeout time.Duration) {
	r := <-done
	if err := stopBootstrapper(context.Background(), boot, stopTimeout); err != nil {
		lc.logger.Error("Failed to stop abandoned bootstrap", zap.Error(err))
		return
	}
	if r.err == nil {
		lc.logger.Warn("Late bootstrap result discarded")
	}
}

func (lc *Lifecycle) serve(app *fiber.App, ln *onceListener) {
	served := make(chan error, 1)

	lc.mu.Lock()
	lc.app = app
	lc.ln = ln
	lc.served = served
	lc.mu.Unlock()

	go func() {
		err := app.Listener(ln)
		if err != nil && lc.State() == StateListening {
			lc.logger.Error("Listener terminated unexpectedly", zap.Error(err))
		}
		served <- err
	}()
}

// Stop stops the bootstrapper and then closes the listener. The close is
// attempted exactly once whatever the bootstrapper returns. Without an open
// listener no close is attempted; a bootstrapper left by Init or by a failed
// Start is still stopped so its services are released. Failures are returned
// as a *StopError.
func (lc *Lifecycle) Stop(ctx context.Context) error {
	if !lc.acquire() {
		return ErrOperationInProgress
	}
	defer lc.release()

	lc.mu.Lock()
	app, ln, served := lc.app, lc.ln, lc.served
	stopTimeout := lc.cfg.StopTimeout
	lc.mu.Unlock()

	if ln == nil {
		lc.logger.Debug("Stop requested without an open listener")
		if lc.boot == nil {
			return nil
		}
		if err := lc.releaseBootstrapper(ctx, stopTimeout); err != nil {
			lc.metrics.failure(PhaseStop)
			lc.setState(StateFailed)
			return &StopError{Bootstrap: err}
		}
		lc.setState(StateStopped)
		return nil
	}

	if stopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, stopTimeout)
		defer cancel()
	}

	begin := time.Now()
	lc.setState(StateStopping)
	lc.logger.Info("Shutting down server...")

	var bootErr, closeErr error
	func() {
		defer func() {
			closeErr = lc.closeListener(ctx, app, ln, served)
		}()
		bootErr = lc.boot.Stop(ctx)
		lc.boot = nil
	}()

	lc.metrics.observe(OperationStop, begin)
	if bootErr != nil {
		lc.metrics.failure(PhaseStop)
	}
	if closeErr != nil {
		lc.metrics.failure(PhaseClose)
		lc.setState(StateFailed)
	} else {
		lc.setState(StateStopped)
	}

	if bootErr != nil || closeErr != nil {
		err := &StopError{Bootstrap: bootErr, Close: closeErr}
		lc.logger.Error("Server stopped with errors", zap.Error(err))
		return err
	}
	lc.logger.Info("Server stopped")
	return nil
}

// closeGrace bounds the close step when the stop deadline is already spent.
const closeGrace = time.Second

// closeListener shuts the router down, closes the listener and waits for the
// serving goroutine. The handles are released whatever happens.
func (lc *Lifecycle) closeListener(ctx context.Context, app *fiber.App, ln *onceListener, served <-chan error) error {
	defer func() {
		lc.mu.Lock()
		lc.app, lc.ln, lc.served = nil, nil, nil
		lc.mu.Unlock()
	}()

	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), closeGrace)
		defer cancel()
	}

	var errs []error
	if err := app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown router: %w", err))
	}
	if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = append(errs, fmt.Errorf("close listener: %w", err))
	}

	select {
	case <-served:
		return errors.Join(errs...)
	default:
	}
	select {
	case <-served:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("wait for listener: %w", ctx.Err()))
	}
	return errors.Join(errs...)
}

// StartAsync runs Start in a goroutine. The returned channel yields its result
// once and is then closed.
func (lc *Lifecycle) StartAsync(ctx context.Context) <-chan error {
	return async(func() error { return lc.Start(ctx) })
}

// StopAsync runs Stop in a goroutine. The returned channel yields its result
// once and is then closed.
func (lc *Lifecycle) StopAsync(ctx context.Context) <-chan error {
	return async(func() error { return lc.Stop(ctx) })
}

func async(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- fn()
	}()
	return ch
}
