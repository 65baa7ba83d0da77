package config_test

import (
	"errors"
	"testing"
	"time"

	"nubes-server/core/config"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		missing bool
		invalid bool
	}{
		{name: "Resolved defaults", mutate: func(c *config.Config) {}},
		{
			name:    "Empty controller packages",
			mutate:  func(c *config.Config) { c.ControllerPackages = []string{} },
			missing: true,
		},
		{
			name:    "Blank controller package",
			mutate:  func(c *config.Config) { c.ControllerPackages = []string{""} },
			missing: true,
		},
		{
			name:    "Service without reference",
			mutate:  func(c *config.Config) { c.Services = [][]string{{"svcA"}} },
			missing: true,
		},
		{
			name:    "Service with empty name",
			mutate:  func(c *config.Config) { c.Services = [][]string{{"", "pkg.Cache"}} },
			missing: true,
		},
		{
			name:    "Port out of range",
			mutate:  func(c *config.Config) { c.Port = 70000 },
			invalid: true,
		},
		{
			name:    "Unknown failure policy",
			mutate:  func(c *config.Config) { c.ServiceFailurePolicy = "retry" },
			invalid: true,
		},
		{
			name:    "Negative stop timeout",
			mutate:  func(c *config.Config) { c.StopTimeout = -time.Second },
			invalid: true,
		},
		{
			name: "Missing and invalid together",
			mutate: func(c *config.Config) {
				c.ControllerPackages = []string{}
				c.Port = -1
			},
			missing: true,
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Resolve(config.Config{})
			tt.mutate(&c)

			err := config.Validate(c)
			if !tt.missing && !tt.invalid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.missing, errors.Is(err, config.ErrMissingConfiguration), "missing")
			assert.Equal(t, tt.invalid, errors.Is(err, config.ErrInvalidConfiguration), "invalid")
		})
	}
}
