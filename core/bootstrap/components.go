package bootstrap

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Controller mounts routes on the router.
type Controller interface {
	// Name returns the name of the controller.
	Name() string
	// IsEnabled reports whether the controller should be mounted.
	IsEnabled() bool
	// Load registers the controller's routes.
	Load(router fiber.Router, env *Env) error
}

// Fixture prepares state before the router is produced and cleans it up on
// stop.
type Fixture interface {
	Name() string
	SetUp(ctx context.Context, env *Env) error
	TearDown(ctx context.Context, env *Env) error
}

// Verticle is a background worker deployed alongside the router. Start
// returns once the worker runs; ctx bounds the start only and is cancelled
// afterwards.
type Verticle interface {
	Name() string
	Start(ctx context.Context, env *Env) error
	Stop(ctx context.Context) error
}

// Starter is implemented by services that need to be started during
// bootstrap.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is implemented by services that hold resources released on stop.
type Stopper interface {
	Stop(ctx context.Context) error
}
