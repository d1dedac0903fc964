package errors

import (
	"errors"
	"fmt"
)

// Common error types for the silent credential core
var (
	// Startup errors
	ErrConfiguration = errors.New("missing identity provider configuration")

	// Provider errors
	ErrProvider     = errors.New("identity provider error")
	ErrInvalidGrant = errors.New("refresh credential revoked or expired")

	// Acquisition errors
	ErrCacheMiss      = errors.New("no cached credential")
	ErrReauthRequired = errors.New("interactive sign-in required")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// ReauthRequired collapses a lower-level failure into the single signal
// surfaced to callers of Acquire. Both ErrReauthRequired and the cause
// remain matchable with errors.Is.
func ReauthRequired(cause error) error {
	if cause == nil {
		return ErrReauthRequired
	}
	return fmt.Errorf("%w: %w", ErrReauthRequired, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
