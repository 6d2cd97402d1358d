/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  The API layer maps these to HTTP status codes in exactly one spot.

ERROR CATEGORIES:
  1. Not-found errors - Missing settings/entries/holidays/corrections
  2. Validation errors - Bad dates, requirements, categories
  3. Store errors - Wrapped database-level failures

USAGE:
  The API layer uses the predicates:

    if attendance.IsNotFound(err) {
        writeError(w, http.StatusNotFound, ...)
    }

SEE ALSO:
  - engine.go: Produces these errors
  - api/handlers.go: Maps them to HTTP responses
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSettingsNotFound is returned when no settings row exists yet.
	// Read paths surface this; write paths self-heal by creating defaults.
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrEntryNotFound is returned when no ledger entry exists for a date.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrHolidayNotFound is returned when deleting a holiday on a date that
	// carries no holiday or leave entry.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrCorrectionNotFound is returned when deleting a correction on a
	// date that has none.
	ErrCorrectionNotFound = errors.New("correction not found")

	// ErrInvalidDateRange is returned when a range ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrInvalidRequirement is returned for non-positive daily working hours
	// or negative corrected minutes.
	ErrInvalidRequirement = errors.New("invalid requirement")

	// ErrInvalidCategory is returned when a category value is outside the
	// closed enumeration, or not allowed for the operation.
	ErrInvalidCategory = errors.New("invalid category")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports an invalid field in a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RangeError reports a malformed day range.
type RangeError struct {
	Start TimePoint
	End   TimePoint
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: %s ends before %s", e.End, e.Start)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidDateRange
}

// CategoryError reports an unusable category value.
type CategoryError struct {
	Value int
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("invalid category value %d", e.Value)
}

func (e *CategoryError) Unwrap() error {
	return ErrInvalidCategory
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSettingsNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrHolidayNotFound) ||
		errors.Is(err, ErrCorrectionNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidRequirement) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.As(err, &ve)
}
