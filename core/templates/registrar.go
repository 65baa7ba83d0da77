package templates

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/handlebars/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/template/mustache/v2"
	"github.com/gofiber/template/pug/v2"
	"go.uber.org/zap"
)

// Recognized template tags.
const (
	TagHandlebars = "hbs"
	TagJade       = "jade"
	TagTempl      = "templ"
	TagThymeleaf  = "thymeleaf"
)

type engineDef struct {
	tag   string
	key   string
	name  string
	build func(dir, extension string) fiber.Views
}

// engines is the closed set of supported tags, in registration order.
var engines = []engineDef{
	{
		tag:  TagHandlebars,
		key:  "hbs",
		name: "HandlebarsTemplateEngine",
		build: func(dir, ext string) fiber.Views {
			return handlebars.New(dir, ext)
		},
	},
	{
		tag:  TagJade,
		key:  "jade",
		name: "PugTemplateEngine",
		build: func(dir, ext string) fiber.Views {
			return pug.New(dir, ext)
		},
	},
	{
		tag:  TagTempl,
		key:  "templ",
		name: "MustacheTemplateEngine",
		build: func(dir, ext string) fiber.Views {
			return mustache.New(dir, ext)
		},
	},
	{
		tag:  TagThymeleaf,
		key:  "html",
		name: "HTMLTemplateEngine",
		build: func(dir, ext string) fiber.Views {
			return html.New(dir, ext)
		},
	},
}

// KeyFor returns the registry key a tag registers under.
func KeyFor(tag string) (string, bool) {
	for _, e := range engines {
		if e.tag == tag {
			return e.key, true
		}
	}
	return "", false
}

// Tags returns the recognized tags.
func Tags() []string {
	tags := make([]string, len(engines))
	for i, e := range engines {
		tags[i] = e.tag
	}
	return tags
}

// Registrar receives engines. The bootstrapper implements it.
type Registrar interface {
	RegisterTemplateEngine(key string, engine fiber.Views)
}

// EngineRegistrar builds engines for configured tags.
type EngineRegistrar struct {
	dir    string
	logger *zap.Logger
}

// NewRegistrar creates a registrar whose engines load files from dir.
func NewRegistrar(dir string, logger *zap.Logger) *EngineRegistrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineRegistrar{dir: dir, logger: logger}
}

// RegisterAll registers one engine per recognized tag in tags and returns the
// keys registered. Unknown tags are ignored and a tag listed twice registers
// once. Each engine loads files ending in ".<key>".
func (r *EngineRegistrar) RegisterAll(tags []string, reg Registrar) []string {
	wanted := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if _, ok := KeyFor(tag); !ok {
			r.logger.Debug("Ignoring unknown template tag", zap.String("tag", tag))
			continue
		}
		wanted[tag] = true
	}

	var keys []string
	for _, e := range engines {
		if !wanted[e.tag] {
			continue
		}
		reg.RegisterTemplateEngine(e.key, e.build(r.dir, "."+e.key))
		keys = append(keys, e.key)
		r.logger.Info(e.name+" registered", zap.String("key", e.key))
	}
	return keys
}
