package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered is returned when no adapter exists for a platform.
	ErrNotRegistered = errors.New("platform not registered")

	// ErrRegistryClosed is returned for operations against a registry that
	// has been shut down.
	ErrRegistryClosed = errors.New("adapter registry is closed")
)

// AuthError records a failed authentication attempt for one platform. It is
// absorbed into ConnectionStatus rather than aborting initialization.
type AuthError struct {
	Platform Platform
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Platform, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ShutdownError aggregates per-adapter teardown failures. Shutdown proceeds
// through every adapter regardless of individual failures.
type ShutdownError struct {
	Errors []error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("%d adapter(s) failed to shut down: %v", len(e.Errors), errors.Join(e.Errors...))
}

func (e *ShutdownError) Unwrap() []error {
	return e.Errors
}
