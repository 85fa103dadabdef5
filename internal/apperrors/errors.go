// Package apperrors defines the error taxonomy shared by services and
// handlers. Upstream-service failures are degraded at the boundary and never
// surface through these types; store failures and caller mistakes do.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an unknown customer, shop, receipt or draw.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a malformed date, bad review action or
	// similar caller mistake.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamUnavailable indicates an unreachable or timed-out external
	// service. Always recoverable; never fatal to receipt ingestion.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrConflict indicates a uniqueness violation, e.g. a second completed
	// draw for a date. The draw engine resolves it as an idempotent outcome.
	ErrConflict = errors.New("conflict")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidArgumentf wraps ErrInvalidArgument with a formatted message.
func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidArgument reports whether err is (or wraps) ErrInvalidArgument.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsConflict reports whether err is (or wraps) ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
