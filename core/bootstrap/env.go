package bootstrap

import (
	"fmt"

	"nubes-server/core/config"

	"go.uber.org/zap"
)

// Env is what controllers, fixtures and verticles see of the bootstrapper.
// It is a snapshot taken when bootstrap begins.
type Env struct {
	Config          config.Config
	Logger          *zap.Logger
	Services        *Services
	TemplateEngines []string
}

// Services is a read-only view of registered services.
type Services struct {
	names     []string
	instances map[string]any
}

func newServices(names []string, instances map[string]any) *Services {
	s := &Services{
		names:     append([]string(nil), names...),
		instances: make(map[string]any, len(instances)),
	}
	for name, instance := range instances {
		s.instances[name] = instance
	}
	return s
}

// Get returns the service registered under name.
func (s *Services) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	instance, ok := s.instances[name]
	return instance, ok
}

// Names returns service names in registration order.
func (s *Services) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Lookup returns the service registered under name as a T.
func Lookup[T any](s *Services, name string) (T, error) {
	var zero T
	instance, ok := s.Get(name)
	if !ok {
		return zero, fmt.Errorf("service %q is not registered", name)
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("service %q is a %T, not a %T", name, instance, zero)
	}
	return typed, nil
}
