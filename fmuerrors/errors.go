// Package fmuerrors defines the error taxonomy shared by all fmu-go packages.
//
// Fatal conditions are raised at the point of detection as one of the typed
// errors below. Recoverable conditions are returned as Warnings on the
// relevant result struct and must be surfaced to the caller, never swallowed.
package fmuerrors

import "fmt"

// ConfigurationError indicates that masterdata or access configuration is
// missing or malformed. Export proceeds with a degraded document and a
// warning, except at final schema-validation time where it becomes fatal.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigurationError creates a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError indicates an invalid content classification, malformed
// content-specific metadata, a failed schema check, or a failed
// aggregation-consistency check. Always fatal.
type ValidationError struct {
	Reason string

	// Err optionally carries the accumulated underlying failures, e.g. a
	// multierror from the aggregation consistency check.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation error: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("validation error: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PathError indicates a non-ASCII resolved path, a missing required naming
// input, or a forcefolder policy violation. Always fatal; a wrong path is
// worse than no path.
type PathError struct {
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path error: %s", e.Reason)
}

// NewPathError creates a PathError with a formatted reason.
func NewPathError(format string, args ...interface{}) *PathError {
	return &PathError{Reason: fmt.Sprintf(format, args...)}
}
