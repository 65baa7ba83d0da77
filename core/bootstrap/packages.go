package bootstrap

import (
	"fmt"
	"sync"
)

// Packages maps package names to the controllers, fixtures and verticles
// registered under them. Configuration selects packages by name; the
// components themselves are registered at process startup.
type Packages struct {
	controllers map[string][]Controller
	fixtures    map[string][]Fixture
	verticles   map[string][]Verticle
	mu          sync.RWMutex
}

// NewPackages creates an empty package registry.
func NewPackages() *Packages {
	return &Packages{
		controllers: make(map[string][]Controller),
		fixtures:    make(map[string][]Fixture),
		verticles:   make(map[string][]Verticle),
	}
}

// AddController registers a controller under pkg.
func (p *Packages) AddController(pkg string, c Controller) error {
	if pkg == "" || c == nil {
		return fmt.Errorf("controller registration needs a package and a controller")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.controllers[pkg] = append(p.controllers[pkg], c)
	return nil
}

// AddFixture registers a fixture under pkg.
func (p *Packages) AddFixture(pkg string, f Fixture) error {
	if pkg == "" || f == nil {
		return fmt.Errorf("fixture registration needs a package and a fixture")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fixtures[pkg] = append(p.fixtures[pkg], f)
	return nil
}

// AddVerticle registers a verticle under pkg.
func (p *Packages) AddVerticle(pkg string, v Verticle) error {
	if pkg == "" || v == nil {
		return fmt.Errorf("verticle registration needs a package and a verticle")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verticles[pkg] = append(p.verticles[pkg], v)
	return nil
}

// Controllers returns the controllers of pkg in registration order.
func (p *Packages) Controllers(pkg string) []Controller {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Controller(nil), p.controllers[pkg]...)
}

// Fixtures returns the fixtures of pkg in registration order.
func (p *Packages) Fixtures(pkg string) []Fixture {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Fixture(nil), p.fixtures[pkg]...)
}

// Verticles returns the verticles of pkg in registration order.
func (p *Packages) Verticles(pkg string) []Verticle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Verticle(nil), p.verticles[pkg]...)
}

// BuiltinPackage is the package the built-in controllers register under.
const BuiltinPackage = "nubes.controllers"

var defaultPackages = NewPackages()

// DefaultPackages returns the process-wide package registry.
func DefaultPackages() *Packages {
	return defaultPackages
}

// RegisterController adds a controller to the process-wide registry. Meant
// for init functions; panics on invalid input.
func RegisterController(pkg string, c Controller) {
	if err := defaultPackages.AddController(pkg, c); err != nil {
		panic(err)
	}
}

// RegisterFixture adds a fixture to the process-wide registry.
func RegisterFixture(pkg string, f Fixture) {
	if err := defaultPackages.AddFixture(pkg, f); err != nil {
		panic(err)
	}
}

// RegisterVerticle adds a verticle to the process-wide registry.
func RegisterVerticle(pkg string, v Verticle) {
	if err := defaultPackages.AddVerticle(pkg, v); err != nil {
		panic(err)
	}
}
