package loader

import (
	"errors"
	"fmt"
)

// Kind classifies why a service could not be created.
type Kind int

const (
	// KindNotFound means no factory is registered for the reference.
	KindNotFound Kind = iota
	// KindInstantiation means the factory failed, panicked or returned nil.
	KindInstantiation
	// KindAccessDenied means the factory refused to build the service.
	KindAccessDenied
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "class not found"
	case KindInstantiation:
		return "instantiation failure"
	case KindAccessDenied:
		return "access denied"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound is wrapped by resolution errors of KindNotFound.
	ErrNotFound = errors.New("service reference not registered")
	// ErrAccessDenied is returned (wrapped) by factories that refuse to build.
	ErrAccessDenied = errors.New("access denied")
)

// ResolutionError reports a service entry that could not be turned into an
// instance.
type ResolutionError struct {
	Name      string
	Reference string
	Kind      Kind
	Err       error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("service %q (%s): %s: %v", e.Name, e.Reference, e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsResolutionError reports whether err carries a ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}
