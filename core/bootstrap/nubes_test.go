package bootstrap_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nubes-server/core/bootstrap"
	"nubes-server/core/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// journal records start/stop events across components.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

type pingController struct {
	name    string
	enabled bool
	err     error
}

func (c *pingController) Name() string    { return c.name }
func (c *pingController) IsEnabled() bool { return c.enabled }
func (c *pingController) Load(router fiber.Router, env *bootstrap.Env) error {
	if c.err != nil {
		return c.err
	}
	router.Get("/"+c.name, func(ctx *fiber.Ctx) error {
		return ctx.SendString(c.name)
	})
	return nil
}

type service struct {
	name     string
	j        *journal
	startErr error
}

func (s *service) Start(ctx context.Context) error {
	s.j.add("start service " + s.name)
	return s.startErr
}

func (s *service) Stop(ctx context.Context) error {
	s.j.add("stop service " + s.name)
	return nil
}

type fixture struct {
	name string
	j    *journal
	err  error
}

func (f *fixture) Name() string { return f.name }
func (f *fixture) SetUp(ctx context.Context, env *bootstrap.Env) error {
	f.j.add("setup " + f.name)
	return f.err
}
func (f *fixture) TearDown(ctx context.Context, env *bootstrap.Env) error {
	f.j.add("teardown " + f.name)
	return nil
}

type verticle struct {
	name     string
	j        *journal
	startErr error
	stopErr  error
	block    bool
}

func (v *verticle) Name() string { return v.name }
func (v *verticle) Start(ctx context.Context, env *bootstrap.Env) error {
	if v.block {
		<-ctx.Done()
		return ctx.Err()
	}
	v.j.add("deploy " + v.name)
	return v.startErr
}
func (v *verticle) Stop(ctx context.Context) error {
	v.j.add("undeploy " + v.name)
	return v.stopErr
}

func resolved() config.Config {
	return config.Resolve(config.Config{SrcPackage: "app"})
}

func newNubes(t *testing.T, pkgs *bootstrap.Packages) *bootstrap.Nubes {
	t.Helper()
	n, err := bootstrap.New(resolved(), bootstrap.WithPackages(pkgs), bootstrap.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return n
}

func TestNew_MissingControllerPackages(t *testing.T) {
	cfg := resolved()
	cfg.ControllerPackages = []string{}

	_, err := bootstrap.New(cfg)
	assert.ErrorIs(t, err, config.ErrMissingConfiguration)
}

func TestBootstrap_MountsControllers(t *testing.T) {
	pkgs := bootstrap.NewPackages()
	require.NoError(t, pkgs.AddController("app.controllers", &pingController{name: "ping", enabled: true}))
	require.NoError(t, pkgs.AddController("app.controllers", &pingController{name: "off", enabled: false}))
	require.NoError(t, pkgs.AddController("other.controllers", &pingController{name: "other", enabled: true}))

	n := newNubes(t, pkgs)
	app, err := n.Bootstrap(context.Background())
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ping", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))

	resp, err = app.Test(httptest.NewRequest("GET", "/off", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode, "disabled controllers are not mounted")

	resp, err = app.Test(httptest.NewRequest("GET", "/other", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode, "only configured packages are mounted")

	_, err = n.Bootstrap(context.Background())
	assert.ErrorIs(t, err, bootstrap.ErrAlreadyBootstrapped)

	require.NoError(t, n.Stop(context.Background()))
	assert.NoError(t, n.Stop(context.Background()), "stop is a no-op when not running")
}

func TestBootstrap_OrderAndStop(t *testing.T) {
	j := &journal{}
	pkgs := bootstrap.NewPackages()
	require.NoError(t, pkgs.AddController("app.controllers", &pingController{name: "ping", enabled: true}))
	require.NoError(t, pkgs.AddFixture("app.fixtures", &fixture{name: "users", j: j}))
	require.NoError(t, pkgs.AddVerticle("app.verticles", &verticle{name: "worker", j: j}))

	n := newNubes(t, pkgs)
	n.RegisterService("db", &service{name: "db", j: j})
	n.RegisterService("cache", &service{name: "cache", j: j})
	n.RegisterService("plain", struct{}{})

	_, err := n.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"start service db",
		"start service cache",
		"setup users",
		"deploy worker",
	}, j.list())

	require.NoError(t, n.Stop(context.Background()))
	assert.Equal(t, []string{
		"undeploy worker",
		"teardown users",
		"stop service cache",
		"stop service db",
	}, j.list()[4:])
}

func TestBootstrap_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(j *journal, pkgs *bootstrap.Packages, n *bootstrap.Nubes)
		wantErr  string
		wantTail []string
	}{
		{
			name: "ServiceStart",
			setup: func(j *journal, pkgs *bootstrap.Packages, n *bootstrap.Nubes) {
				n.RegisterService("db", &service{name: "db", j: j})
				n.RegisterService("broken", &service{name: "broken", j: j, startErr: errors.New("refused")})
			},
			wantErr:  "start service broken",
			wantTail: []string{"stop service db"},
		},
		{
			name: "Fixture",
			setup: func(j *journal, pkgs *bootstrap.Packages, n *bootstrap.Nubes) {
				n.RegisterService("db", &service{name: "db", j: j})
				_ = pkgs.AddFixture("app.fixtures", &fixture{name: "bad", j: j, err: errors.New("seed failed")})
			},
			wantErr:  "set up fixture bad",
			wantTail: []string{"stop service db"},
		},
		{
			name: "Controller",
			setup: func(j *journal, pkgs *bootstrap.Packages, n *bootstrap.Nubes) {
				_ = pkgs.AddFixture("app.fixtures", &fixture{name: "users", j: j})
				_ = pkgs.AddController("app.controllers", &pingController{name: "bad", enabled: true, err: errors.New("route clash")})
			},
			wantErr:  "load controller bad",
			wantTail: []string{"teardown users"},
		},
		{
			name: "Verticle",
			setup: func(j *journal, pkgs *bootstrap.Packages, n *bootstrap.Nubes) {
				_ = pkgs.AddVerticle("app.verticles", &verticle{name: "bad", j: j, startErr: errors.New("no port")})
			},
			wantErr: "deploy verticle bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &journal{}
			pkgs := bootstrap.NewPackages()
			n := newNubes(t, pkgs)
			tt.setup(j, pkgs, n)

			app, err := n.Bootstrap(context.Background())
			require.Error(t, err)
			assert.Nil(t, app)
			assert.Contains(t, err.Error(), tt.wantErr)

			events := j.list()
			if len(tt.wantTail) > 0 {
				assert.Equal(t, tt.wantTail, events[len(events)-len(tt.wantTail):])
			}

			// Stop releases what the rollback did not reach, once.
			assert.NoError(t, n.Stop(context.Background()))
			stopped := j.list()
			assert.NoError(t, n.Stop(context.Background()))
			assert.Equal(t, stopped, j.list())
		})
	}
}

func TestStop_ReleasesServicesWithoutBootstrap(t *testing.T) {
	j := &journal{}
	n := newNubes(t, bootstrap.NewPackages())
	n.RegisterService("db", &service{name: "db", j: j})
	n.RegisterService("plain", struct{}{})
	n.RegisterService("cache", &service{name: "cache", j: j})

	require.NoError(t, n.Stop(context.Background()))
	assert.Equal(t, []string{"stop service cache", "stop service db"}, j.list())

	require.NoError(t, n.Stop(context.Background()))
	assert.Len(t, j.list(), 2, "services are released once")
}

func TestStop_DoesNotStopServicesTwice(t *testing.T) {
	j := &journal{}
	n := newNubes(t, bootstrap.NewPackages())
	n.RegisterService("db", &service{name: "db", j: j})

	_, err := n.Bootstrap(context.Background())
	require.NoError(t, err)
	require.NoError(t, n.Stop(context.Background()))
	require.NoError(t, n.Stop(context.Background()))

	assert.Equal(t, []string{"start service db", "stop service db"}, j.list())
}

func TestBootstrap_Cancelled(t *testing.T) {
	j := &journal{}
	pkgs := bootstrap.NewPackages()
	require.NoError(t, pkgs.AddVerticle("app.verticles", &verticle{name: "slow", j: j, block: true}))
	n := newNubes(t, pkgs)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := n.Bootstrap(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBootstrap_StopJoinsErrors(t *testing.T) {
	j := &journal{}
	pkgs := bootstrap.NewPackages()
	require.NoError(t, pkgs.AddVerticle("app.verticles", &verticle{name: "a", j: j, stopErr: errors.New("a stuck")}))
	require.NoError(t, pkgs.AddFixture("app.fixtures", &fixture{name: "users", j: j}))
	n := newNubes(t, pkgs)

	_, err := n.Bootstrap(context.Background())
	require.NoError(t, err)

	err = n.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a stuck")
	assert.Contains(t, j.list(), "teardown users", "later steps still run")
}

func TestRegistries(t *testing.T) {
	n := newNubes(t, bootstrap.NewPackages())

	n.RegisterService("a", 1)
	n.RegisterService("b", 2)
	n.RegisterService("a", 3)
	assert.Equal(t, []string{"b", "a"}, n.ServiceNames())

	n.RegisterTemplateEngine("html", nil)
	n.RegisterTemplateEngine("hbs", nil)
	n.RegisterTemplateEngine("html", nil)
	assert.Equal(t, []string{"hbs", "html"}, n.TemplateEngines())
}

func TestLookup(t *testing.T) {
	j := &journal{}
	var seen *bootstrap.Env
	pkgs := bootstrap.NewPackages()
	require.NoError(t, pkgs.AddFixture("app.fixtures", fixtureFunc(func(env *bootstrap.Env) { seen = env })))

	n := newNubes(t, pkgs)
	n.RegisterService("db", &service{name: "db", j: j})
	_, err := n.Bootstrap(context.Background())
	require.NoError(t, err)
	defer n.Stop(context.Background())

	require.NotNil(t, seen)
	svc, err := bootstrap.Lookup[*service](seen.Services, "db")
	require.NoError(t, err)
	assert.Equal(t, "db", svc.name)

	_, err = bootstrap.Lookup[*service](seen.Services, "missing")
	assert.ErrorContains(t, err, "not registered")

	_, err = bootstrap.Lookup[string](seen.Services, "db")
	assert.ErrorContains(t, err, "not a string")
}

type fixtureFunc func(env *bootstrap.Env)

func (f fixtureFunc) Name() string { return "func" }
func (f fixtureFunc) SetUp(ctx context.Context, env *bootstrap.Env) error {
	f(env)
	return nil
}
func (f fixtureFunc) TearDown(ctx context.Context, env *bootstrap.Env) error { return nil }
