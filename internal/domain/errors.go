package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is against the typed errors below.
var (
	ErrInvalidRange      = errors.New("invalid range")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrCursorMismatch    = errors.New("cursor does not match query")
	ErrMalformedCursor   = errors.New("malformed cursor")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// InvalidRangeError reports a malformed or contradictory date/range input.
type InvalidRangeError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid range: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid range: %s=%q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// NewInvalidRangeError creates a new range error
func NewInvalidRangeError(field, value, reason string) *InvalidRangeError {
	return &InvalidRangeError{Field: field, Value: value, Reason: reason}
}

// SourceUnavailableError wraps a transport or auth failure of one collection.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceUnavailableError creates a new source error
func NewSourceUnavailableError(source string, err error) *SourceUnavailableError {
	return &SourceUnavailableError{Source: source, Err: err}
}

// CursorMismatchError is returned when a cursor is replayed against a query
// configuration other than the one that issued it.
type CursorMismatchError struct {
	Expected string
	Got      string
}

func (e *CursorMismatchError) Error() string {
	return fmt.Sprintf("cursor issued for query %s cannot be used with query %s", e.Got, e.Expected)
}

func (e *CursorMismatchError) Is(target error) bool {
	return target == ErrCursorMismatch
}

// InvalidSortFieldWarning is never returned as an error. It is logged and
// reported alongside the results when a sort field falls back to the default.
type InvalidSortFieldWarning struct {
	Field    string
	Fallback string
}

func (w InvalidSortFieldWarning) String() string {
	return fmt.Sprintf("unsupported sort field %q, sorted by %q instead", w.Field, w.Fallback)
}
