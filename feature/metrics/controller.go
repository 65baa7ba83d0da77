package metrics

import (
	"nubes-server/core/bootstrap"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path is where the exposition is served.
const Path = "/metrics"

func init() {
	bootstrap.RegisterController(bootstrap.BuiltinPackage, New(prometheus.DefaultGatherer))
}

// Controller serves the Prometheus exposition of a gatherer.
type Controller struct {
	gatherer prometheus.Gatherer
}

// New creates a controller over gatherer.
func New(gatherer prometheus.Gatherer) *Controller {
	return &Controller{gatherer: gatherer}
}

func (c *Controller) Name() string    { return "metrics" }
func (c *Controller) IsEnabled() bool { return c.gatherer != nil }

// Load mounts GET /metrics.
func (c *Controller) Load(router fiber.Router, env *bootstrap.Env) error {
	handler := promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{
		ErrorLog: zapErrorLog{env},
	})
	router.Get(Path, adaptor.HTTPHandler(handler))
	return nil
}

// zapErrorLog adapts the bootstrap logger to promhttp.Logger.
type zapErrorLog struct {
	env *bootstrap.Env
}

func (l zapErrorLog) Println(v ...interface{}) {
	l.env.Logger.Sugar().Error(v...)
}
