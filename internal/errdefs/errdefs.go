// Package errdefs defines the error kinds reported by the pattern pipeline.
//
// Both kinds describe caller-input defects rather than transient failures, so
// nothing in the pipeline retries on them. Use errors.Is to classify.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a missing source image or a non-positive
	// dimension or colour count.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration reports an empty or unavailable reference palette.
	ErrConfiguration = errors.New("configuration error")
)

// InvalidInput returns an error wrapping ErrInvalidInput with a formatted message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Configuration returns an error wrapping ErrConfiguration with a formatted message.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
