package status

import (
	"nubes-server/core/bootstrap"

	"github.com/gofiber/fiber/v2"
)

func init() {
	bootstrap.RegisterController(bootstrap.BuiltinPackage, Controller{})
}

// Controller mounts the status routes.
type Controller struct{}

func (Controller) Name() string    { return "status" }
func (Controller) IsEnabled() bool { return true }

// Load mounts GET /status and GET /status/services/:name.
func (Controller) Load(router fiber.Router, env *bootstrap.Env) error {
	NewHandler(NewService(env, env.Logger)).RegisterRoutes(router)
	return nil
}
