package config

import (
	"slices"
	"time"
)

// Defaults applied by Resolve when a key is absent.
const (
	DefaultHost             = "localhost"
	DefaultPort             = 9000
	DefaultSrcPackage       = "src.package"
	DefaultViewsDir         = "web/views"
	DefaultBootstrapTimeout = 30 * time.Second
	DefaultStopTimeout      = 10 * time.Second
)

// Suffixes appended to src-package for derived keys.
const (
	VerticlesSuffix   = ".verticles"
	ControllersSuffix = ".controllers"
	FixturesSuffix    = ".fixtures"
)

// Resolve fills absent keys with their defaults and derives the package keys
// from src-package. Keys that are already present are never overwritten, so
// Resolve(Resolve(c)) equals Resolve(c). The returned config shares no slices
// with c.
//
// A string key is absent when empty; a list key is absent when nil. An
// explicitly empty list is kept as is. Numeric and duration keys are absent
// when zero, so an explicit "port": 0 cannot be told apart from a missing
// port and resolves to DefaultPort.
func Resolve(c Config) Config {
	out := c
	out.Services = cloneServices(c.Services)
	out.Templates = slices.Clone(c.Templates)
	out.ControllerPackages = slices.Clone(c.ControllerPackages)
	out.FixturePackages = slices.Clone(c.FixturePackages)

	if out.Host == "" {
		out.Host = DefaultHost
	}
	if out.Port == 0 {
		out.Port = DefaultPort
	}
	if out.SrcPackage == "" {
		out.SrcPackage = DefaultSrcPackage
	}

	if out.VerticlePackage == "" {
		out.VerticlePackage = out.SrcPackage + VerticlesSuffix
	}
	// domain-package is left unresolved on purpose.
	if out.ControllerPackages == nil {
		out.ControllerPackages = []string{out.SrcPackage + ControllersSuffix}
	}
	if out.FixturePackages == nil {
		out.FixturePackages = []string{out.SrcPackage + FixturesSuffix}
	}

	if out.ViewsDir == "" {
		out.ViewsDir = DefaultViewsDir
	}
	if out.BootstrapTimeout == 0 {
		out.BootstrapTimeout = DefaultBootstrapTimeout
	}
	if out.StopTimeout == 0 {
		out.StopTimeout = DefaultStopTimeout
	}
	if out.ServiceFailurePolicy == "" {
		out.ServiceFailurePolicy = PolicyFailFast
	}

	return out
}

func cloneServices(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, pair := range in {
		out[i] = slices.Clone(pair)
	}
	return out
}
