package config

import "errors"

var (
	// ErrMissingConfiguration reports a required value that is absent. It is
	// fatal to a start attempt.
	ErrMissingConfiguration = errors.New("missing required configuration")
	// ErrInvalidConfiguration reports a value that is present but unusable.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
