package templates_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"nubes-server/core/templates"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViews struct {
	label   string
	loadErr error
	name    string
	layouts []string
}

func (f *fakeViews) Load() error { return f.loadErr }

func (f *fakeViews) Render(out io.Writer, name string, _ interface{}, layout ...string) error {
	f.name = name
	f.layouts = layout
	_, err := fmt.Fprintf(out, "%s:%s", f.label, name)
	return err
}

func TestSet_RenderByExtension(t *testing.T) {
	hbs := &fakeViews{label: "hbs"}
	htmlViews := &fakeViews{label: "html"}
	set := templates.NewSet(map[string]fiber.Views{"hbs": hbs, "html": htmlViews})

	var buf bytes.Buffer
	require.NoError(t, set.Render(&buf, "pages/index.hbs", nil, "layouts/main.hbs"))
	assert.Equal(t, "hbs:pages/index", buf.String())
	assert.Equal(t, []string{"layouts/main"}, hbs.layouts)

	buf.Reset()
	require.NoError(t, set.Render(&buf, "index.html", nil))
	assert.Equal(t, "html:index", buf.String())

	err := set.Render(&buf, "index.jade", nil)
	assert.ErrorIs(t, err, templates.ErrNoEngine)

	err = set.Render(&buf, "index", nil)
	assert.ErrorIs(t, err, templates.ErrNoEngine, "ambiguous without extension")
}

func TestSet_SingleEngineWithoutExtension(t *testing.T) {
	only := &fakeViews{label: "templ"}
	set := templates.NewSet(map[string]fiber.Views{"templ": only})

	var buf bytes.Buffer
	require.NoError(t, set.Render(&buf, "index", nil))
	assert.Equal(t, "templ:index", buf.String())
}

func TestSet_Load(t *testing.T) {
	set := templates.NewSet(map[string]fiber.Views{
		"hbs":  &fakeViews{},
		"jade": &fakeViews{loadErr: errors.New("parse error")},
	})

	err := set.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template engine jade")
	assert.Equal(t, []string{"hbs", "jade"}, set.Keys())
}

func TestSet_HTMLEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.html"), []byte("Hello {{.Name}}"), 0o644))

	set := templates.NewSet(map[string]fiber.Views{"html": html.New(dir, ".html")})
	require.NoError(t, set.Load())

	var buf bytes.Buffer
	require.NoError(t, set.Render(&buf, "hello.html", map[string]any{"Name": "nubes"}))
	assert.Equal(t, "Hello nubes", buf.String())
}
