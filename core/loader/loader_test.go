package loader_test

import (
	"errors"
	"fmt"
	"testing"

	"nubes-server/core/config"
	"nubes-server/core/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	names     []string
	instances map[string]any
}

func (r *recorder) RegisterService(name string, instance any) {
	if r.instances == nil {
		r.instances = make(map[string]any)
	}
	r.names = append(r.names, name)
	r.instances[name] = instance
}

type counter struct{ id int }

func testCatalog(t *testing.T) *loader.Catalog {
	t.Helper()
	c := loader.NewCatalog()
	next := 0
	require.NoError(t, c.Register("pkg.Counter", func() (any, error) {
		next++
		return &counter{id: next}, nil
	}))
	require.NoError(t, c.Register("pkg.Broken", func() (any, error) {
		return nil, errors.New("constructor failed")
	}))
	require.NoError(t, c.Register("pkg.Private", func() (any, error) {
		return nil, fmt.Errorf("pkg.Private: %w", loader.ErrAccessDenied)
	}))
	require.NoError(t, c.Register("pkg.Panics", func() (any, error) {
		panic("boom")
	}))
	require.NoError(t, c.Register("pkg.Nil", func() (any, error) {
		var c *counter
		return c, nil
	}))
	return c
}

func TestCatalog_Register(t *testing.T) {
	c := loader.NewCatalog()
	factory := func() (any, error) { return 1, nil }

	assert.NoError(t, c.Register("a", factory))
	assert.Error(t, c.Register("a", factory), "duplicate reference")
	assert.Error(t, c.Register("", factory), "empty reference")
	assert.Error(t, c.Register("b", nil), "nil factory")

	_, ok := c.Lookup("a")
	assert.True(t, ok)
	_, ok = c.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, c.References())
}

func TestRegisterAll_Order(t *testing.T) {
	l := loader.New(testCatalog(t), config.PolicyFailFast, zap.NewNop())
	reg := &recorder{}

	report, err := l.RegisterAll([]config.ServiceDescriptor{
		{Name: "first", Reference: "pkg.Counter"},
		{Name: "second", Reference: "pkg.Counter"},
	}, reg)

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, reg.names)
	assert.Equal(t, []string{"first", "second"}, report.Registered)
	assert.Equal(t, 1, reg.instances["first"].(*counter).id)
	assert.Equal(t, 2, reg.instances["second"].(*counter).id)
}

func TestRegisterAll_DuplicateNameLastWins(t *testing.T) {
	l := loader.New(testCatalog(t), config.PolicyFailFast, zap.NewNop())
	reg := &recorder{}

	report, err := l.RegisterAll([]config.ServiceDescriptor{
		{Name: "svc", Reference: "pkg.Counter"},
		{Name: "svc", Reference: "pkg.Counter"},
	}, reg)

	require.NoError(t, err)
	assert.Equal(t, []string{"svc"}, report.Registered)
	assert.Equal(t, []string{"svc"}, report.Overwritten)
	assert.Equal(t, 2, reg.instances["svc"].(*counter).id)
}

func TestRegisterAll_FailFastClassification(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		kind      loader.Kind
		target    error
	}{
		{"ClassNotFound", "pkg.NoSuchClass", loader.KindNotFound, loader.ErrNotFound},
		{"InstantiationFailure", "pkg.Broken", loader.KindInstantiation, nil},
		{"Panic", "pkg.Panics", loader.KindInstantiation, nil},
		{"NilInstance", "pkg.Nil", loader.KindInstantiation, nil},
		{"AccessDenied", "pkg.Private", loader.KindAccessDenied, loader.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := loader.New(testCatalog(t), config.PolicyFailFast, zap.NewNop())
			reg := &recorder{}

			_, err := l.RegisterAll([]config.ServiceDescriptor{
				{Name: "svcA", Reference: tt.reference},
				{Name: "svcB", Reference: "pkg.Counter"},
			}, reg)

			var re *loader.ResolutionError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.kind, re.Kind)
			assert.Equal(t, "svcA", re.Name)
			assert.Equal(t, tt.reference, re.Reference)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Empty(t, reg.names, "nothing after the failing entry is registered")
		})
	}
}

func TestRegisterAll_SkipPolicy(t *testing.T) {
	l := loader.New(testCatalog(t), config.PolicySkip, zap.NewNop())
	reg := &recorder{}

	report, err := l.RegisterAll([]config.ServiceDescriptor{
		{Name: "svcA", Reference: "pkg.NoSuchClass"},
		{Name: "svcB", Reference: "pkg.Counter"},
		{Name: "svcC", Reference: "pkg.Private"},
	}, reg)

	require.NoError(t, err)
	assert.Equal(t, []string{"svcB"}, reg.names)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, loader.KindNotFound, report.Skipped[0].Kind)
	assert.Equal(t, loader.KindAccessDenied, report.Skipped[1].Kind)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "class not found", loader.KindNotFound.String())
	assert.Equal(t, "instantiation failure", loader.KindInstantiation.String())
	assert.Equal(t, "access denied", loader.KindAccessDenied.String())
	assert.Equal(t, "unknown", loader.Kind(42).String())
}
