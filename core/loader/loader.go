package loader

import (
	"errors"
	"fmt"
	"reflect"

	"nubes-server/core/config"

	"go.uber.org/zap"
)

// Registrar receives created services. The bootstrapper implements it.
type Registrar interface {
	RegisterService(name string, instance any)
}

// Report describes what RegisterAll did.
type Report struct {
	// Registered lists service names in registration order.
	Registered []string
	// Overwritten lists names registered more than once; the later entry won.
	Overwritten []string
	// Skipped lists failures tolerated under the skip policy.
	Skipped []*ResolutionError
}

// Loader turns service descriptors into instances using a catalog.
type Loader struct {
	catalog *Catalog
	policy  string
	logger  *zap.Logger
}

// New creates a loader. policy is config.PolicyFailFast or config.PolicySkip;
// anything else behaves as fail-fast.
func New(catalog *Catalog, policy string, logger *zap.Logger) *Loader {
	if catalog == nil {
		catalog = Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{catalog: catalog, policy: policy, logger: logger}
}

// RegisterAll creates every service in order and registers it under its
// name. A later entry with the same name replaces the earlier one.
//
// Under fail-fast the first failure is returned as a *ResolutionError and no
// further entries are processed. Under skip each failure is logged, recorded
// in the report and the remaining entries are still processed.
func (l *Loader) RegisterAll(services []config.ServiceDescriptor, reg Registrar) (Report, error) {
	var report Report
	seen := make(map[string]bool, len(services))

	for _, desc := range services {
		instance, err := l.instantiate(desc)
		if err != nil {
			var re *ResolutionError
			if !errors.As(err, &re) {
				re = &ResolutionError{Name: desc.Name, Reference: desc.Reference, Kind: KindInstantiation, Err: err}
			}

			if l.policy != config.PolicySkip {
				l.logger.Error("Service registration failed",
					zap.String("service", desc.Name),
					zap.String("reference", desc.Reference),
					zap.Stringer("kind", re.Kind),
					zap.Error(re.Err),
				)
				return report, re
			}

			l.logger.Warn("Skipping service",
				zap.String("service", desc.Name),
				zap.String("reference", desc.Reference),
				zap.Stringer("kind", re.Kind),
				zap.Error(re.Err),
			)
			report.Skipped = append(report.Skipped, re)
			continue
		}

		if seen[desc.Name] {
			l.logger.Warn("Service registered twice, keeping the later entry",
				zap.String("service", desc.Name),
				zap.String("reference", desc.Reference),
			)
			report.Overwritten = append(report.Overwritten, desc.Name)
		} else {
			report.Registered = append(report.Registered, desc.Name)
		}
		seen[desc.Name] = true

		reg.RegisterService(desc.Name, instance)
		l.logger.Info("Service registered",
			zap.String("service", desc.Name),
			zap.String("reference", desc.Reference),
		)
	}

	return report, nil
}

func (l *Loader) instantiate(desc config.ServiceDescriptor) (instance any, err error) {
	factory, ok := l.catalog.Lookup(desc.Reference)
	if !ok {
		return nil, &ResolutionError{Name: desc.Name, Reference: desc.Reference, Kind: KindNotFound, Err: ErrNotFound}
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = &ResolutionError{
				Name:      desc.Name,
				Reference: desc.Reference,
				Kind:      KindInstantiation,
				Err:       fmt.Errorf("factory panicked: %v", r),
			}
		}
	}()

	instance, err = factory()
	if err != nil {
		kind := KindInstantiation
		if errors.Is(err, ErrAccessDenied) {
			kind = KindAccessDenied
		}
		return nil, &ResolutionError{Name: desc.Name, Reference: desc.Reference, Kind: kind, Err: err}
	}
	if isNil(instance) {
		return nil, &ResolutionError{
			Name:      desc.Name,
			Reference: desc.Reference,
			Kind:      KindInstantiation,
			Err:       errors.New("factory returned a nil instance"),
		}
	}
	return instance, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
