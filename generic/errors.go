/*
errors.go - Centralized error types for the staffing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match categories with errors.Is and read details with errors.As.

ERROR CATEGORIES:
  1. Validation errors - InvalidPercentage, InvalidRange, NonWorkingDay, MissingID
  2. Lookup errors - AssignmentNotFound and the master-data not-found family
  3. Write errors - TransactionFailure (rolled back), ConcurrencyConflict

USAGE:
  if errors.Is(err, generic.ErrNonWorkingDay) {
      var nwd *generic.NonWorkingDayError
      errors.As(err, &nwd)
      log.Printf("rejected %s: %s", nwd.Date, nwd.Reason)
  }

SEE ALSO:
  - versioned.go: produces ConcurrencyConflictError
  - staffing/allocation.go: produces the validation and write errors
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPercentage is returned for a percentage outside [0,100].
	ErrInvalidPercentage = errors.New("invalid percentage")

	// ErrInvalidRange is returned when a range starts after it ends.
	ErrInvalidRange = errors.New("invalid range: start after end")

	// ErrNonWorkingDay is returned when writing to a weekend, holiday or closure.
	ErrNonWorkingDay = errors.New("date is not a working day")

	// ErrAssignmentNotFound is returned when the assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrTransactionFailed is returned when a multi-write operation was rolled back.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrConcurrencyConflict is returned when a versioned write lost a race.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	ErrResourceNotFound = errors.New("resource not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrEventNotFound    = errors.New("calendar event not found")

	// ErrDuplicateAssignment is returned when the (resource, project) pair
	// already has an assignment.
	ErrDuplicateAssignment = errors.New("assignment already exists for resource and project")

	// ErrInvalidCostHistory is returned when role cost intervals overlap or
	// an interval ends before it starts.
	ErrInvalidCostHistory = errors.New("invalid role cost history")

	// ErrInvalidCalendarEvent is returned for an unknown event type or a
	// LOCAL_HOLIDAY without a location.
	ErrInvalidCalendarEvent = errors.New("invalid calendar event")

	// ErrMissingID is returned when a master-data record is saved without an id.
	ErrMissingID = errors.New("id is required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type InvalidPercentageError struct {
	Value int
}

func (e *InvalidPercentageError) Error() string {
	return fmt.Sprintf("invalid percentage %d: must be between 0 and 100", e.Value)
}

func (e *InvalidPercentageError) Unwrap() error { return ErrInvalidPercentage }

type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: start %s is after end %s", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// NonWorkingDayError names the rule that made the date non-working.
type NonWorkingDayError struct {
	AssignmentID AssignmentID
	Date         Date
	Location     Location
	Reason       string // "weekend" or the calendar event type
}

func (e *NonWorkingDayError) Error() string {
	return fmt.Sprintf("%s is not a working day at %q (%s)", e.Date, e.Location, e.Reason)
}

func (e *NonWorkingDayError) Unwrap() error { return ErrNonWorkingDay }

// TransactionFailureError reports a rolled-back batch. It matches both
// ErrTransactionFailed and whatever made the batch fail.
type TransactionFailureError struct {
	Op    string
	Cause error
}

func (e *TransactionFailureError) Error() string {
	return fmt.Sprintf("%s rolled back: %v", e.Op, e.Cause)
}

func (e *TransactionFailureError) Unwrap() []error {
	return []error{ErrTransactionFailed, e.Cause}
}

type ConcurrencyConflictError struct {
	Kind     string
	Key      string
	Expected int64
	Actual   int64
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %s: expected version %d, found %d", e.Kind, e.Key, e.Expected, e.Actual)
}

func (e *ConcurrencyConflictError) Unwrap() error { return ErrConcurrencyConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed after re-reading.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPercentage) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrNonWorkingDay) ||
		errors.Is(err, ErrInvalidCostHistory) ||
		errors.Is(err, ErrInvalidCalendarEvent) ||
		errors.Is(err, ErrMissingID)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrEventNotFound)
}

// IsConflict returns true if the write collided with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrDuplicateAssignment)
}
