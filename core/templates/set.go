package templates

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrNoEngine is returned when no engine matches a template name.
var ErrNoEngine = errors.New("no template engine for template")

// Set is a fiber.Views that renders each template with the engine registered
// for its file extension. "index.hbs" renders "index" with the hbs engine.
type Set struct {
	engines map[string]fiber.Views
}

// NewSet creates a view set over engines keyed by extension. The map is
// copied.
func NewSet(engines map[string]fiber.Views) *Set {
	s := &Set{engines: make(map[string]fiber.Views, len(engines))}
	for key, engine := range engines {
		s.engines[key] = engine
	}
	return s
}

// Keys returns the registered extensions, sorted.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.engines))
	for key := range s.engines {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Load loads every engine.
func (s *Set) Load() error {
	var errs []error
	for _, key := range s.Keys() {
		if err := s.engines[key].Load(); err != nil {
			errs = append(errs, fmt.Errorf("template engine %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Render implements fiber.Views. A name without extension is rendered by the
// only engine when exactly one is registered.
func (s *Set) Render(out io.Writer, name string, binding interface{}, layout ...string) error {
	engine, base, err := s.resolve(name)
	if err != nil {
		return err
	}

	layouts := make([]string, len(layout))
	for i, l := range layout {
		layouts[i] = strings.TrimSuffix(l, filepath.Ext(l))
	}
	return engine.Render(out, base, binding, layouts...)
}

func (s *Set) resolve(name string) (fiber.Views, string, error) {
	ext := filepath.Ext(name)
	if engine, ok := s.engines[strings.TrimPrefix(ext, ".")]; ok && ext != "" {
		return engine, strings.TrimSuffix(name, ext), nil
	}
	if ext == "" && len(s.engines) == 1 {
		for _, engine := range s.engines {
			return engine, name, nil
		}
	}
	return nil, "", fmt.Errorf("%w %q", ErrNoEngine, name)
}
