package assets

import (
	"nubes-server/core/bootstrap"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ServiceName is the name the storage service must be registered under.
const ServiceName = "storage"

func init() {
	bootstrap.RegisterController(bootstrap.BuiltinPackage, Controller{})
}

// Controller mounts the asset routes when a storage service is registered.
type Controller struct{}

func (Controller) Name() string    { return "assets" }
func (Controller) IsEnabled() bool { return true }

// Load mounts GET /assets and GET /assets/*. Without a storage service the
// routes are not mounted.
func (Controller) Load(router fiber.Router, env *bootstrap.Env) error {
	store, err := bootstrap.Lookup[Store](env.Services, ServiceName)
	if err != nil {
		env.Logger.Info("Assets disabled", zap.Error(err))
		return nil
	}
	NewHandler(NewService(store, env.Logger)).RegisterRoutes(router)
	return nil
}
