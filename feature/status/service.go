package status

import (
	"context"
	"fmt"
	"time"

	"nubes-server/core/bootstrap"

	"go.uber.org/zap"
)

// Pinger is implemented by services that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service statuses.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusUnsupported = "n/a"
)

// ServiceReport is the health of one registered service.
type ServiceReport struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the runtime status of the unit.
type Report struct {
	Status          string          `json:"status"`
	SrcPackage      string          `json:"src_package"`
	Services        []ServiceReport `json:"services"`
	TemplateEngines []string        `json:"template_engines"`
}

// Service builds status reports from a bootstrap environment.
type Service struct {
	env         *bootstrap.Env
	logger      *zap.Logger
	pingTimeout time.Duration
}

// NewService creates a new status service.
func NewService(env *bootstrap.Env, logger *zap.Logger) *Service {
	return &Service{env: env, logger: logger, pingTimeout: 5 * time.Second}
}

// Report pings every service that supports it, in registration order. The
// overall status is "error" when any ping fails.
func (s *Service) Report(ctx context.Context) Report {
	report := Report{
		Status:          StatusOK,
		SrcPackage:      s.env.Config.SrcPackage,
		Services:        []ServiceReport{},
		TemplateEngines: append([]string{}, s.env.TemplateEngines...),
	}

	for _, name := range s.env.Services.Names() {
		sr, _ := s.Check(ctx, name)
		if sr.Status == StatusError {
			report.Status = StatusError
		}
		report.Services = append(report.Services, sr)
	}
	return report
}

// Check reports the health of a single service. The boolean is false when no
// service is registered under name.
func (s *Service) Check(ctx context.Context, name string) (ServiceReport, bool) {
	instance, ok := s.env.Services.Get(name)
	if !ok {
		return ServiceReport{Name: name}, false
	}

	sr := ServiceReport{
		Name:   name,
		Type:   fmt.Sprintf("%T", instance),
		Status: StatusUnsupported,
	}

	pinger, ok := instance.(Pinger)
	if !ok {
		return sr, true
	}

	pctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	if err := pinger.Ping(pctx); err != nil {
		s.logger.Warn("Service ping failed", zap.String("service", name), zap.Error(err))
		sr.Status = StatusError
		sr.Error = err.Error()
		return sr, true
	}
	sr.Status = StatusOK
	return sr, true
}
