package server

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOperationInProgress is returned when init, start or stop is called
	// while another of them is still running on the same lifecycle.
	ErrOperationInProgress = errors.New("lifecycle operation already in progress")
	// ErrAlreadyStarted is returned by Start while listening.
	ErrAlreadyStarted = errors.New("server already started")
	// ErrInvalidState is returned for a transition the state machine does not allow.
	ErrInvalidState = errors.New("invalid lifecycle state")
	// ErrBootstrapTimeout is returned when the router is not produced in time.
	ErrBootstrapTimeout = errors.New("bootstrap timed out")
)

// BindError reports that the listener could not bind.
type BindError struct {
	Addr string
	Err  error
}

// Error implements the error interface
func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying error
func (e *BindError) Unwrap() error {
	return e.Err
}

// StopError carries the failures of a stop sequence. Either field may be nil.
type StopError struct {
	// Bootstrap is the error returned by the bootstrapper's stop.
	Bootstrap error
	// Close is the error from closing the listener.
	Close error
}

// Error implements the error interface
func (e *StopError) Error() string {
	var parts []string
	if e.Bootstrap != nil {
		parts = append(parts, "bootstrapper: "+e.Bootstrap.Error())
	}
	if e.Close != nil {
		parts = append(parts, "listener: "+e.Close.Error())
	}
	return "stop failed: " + strings.Join(parts, "; ")
}

// Unwrap returns the underlying errors
func (e *StopError) Unwrap() []error {
	var errs []error
	if e.Bootstrap != nil {
		errs = append(errs, e.Bootstrap)
	}
	if e.Close != nil {
		errs = append(errs, e.Close)
	}
	return errs
}
