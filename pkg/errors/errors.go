package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStoreClosed is returned by every operation on a store after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrSegmentClosed indicates an operation on a closed segment.
	ErrSegmentClosed = errors.New("segment is closed")
)

// ErrorCategory classifies the failures a store can report. The category
// tells the caller how far the failure reaches: a single record, a single
// call, or the whole store.
type ErrorCategory int

const (
	// ErrorInitialization indicates the store could not start: the
	// directory is unusable or the first segment could not be created.
	ErrorInitialization ErrorCategory = iota + 1

	// ErrorInvalidRecord indicates malformed caller input. Nothing was
	// written and no shared state changed.
	ErrorInvalidRecord

	// ErrorWrite indicates an I/O or serialization failure while writing a
	// record. The record is lost; the store keeps accepting appends.
	ErrorWrite

	// ErrorRotation indicates the replacement segment could not be opened.
	// The store is terminal and every later append fails with this error.
	ErrorRotation

	// ErrorClose indicates a failure while releasing segment resources.
	ErrorClose

	// ErrorClosed indicates a call made after Close. Nothing was attempted.
	ErrorClosed
)

// String returns the string representation of the error category.
// This is useful for logging, metrics, and error reporting.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorInitialization:
		return "initialization"
	case ErrorInvalidRecord:
		return "invalid_record"
	case ErrorWrite:
		return "write"
	case ErrorRotation:
		return "rotation"
	case ErrorClose:
		return "close"
	case ErrorClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StoreError is the error type returned by store operations.
type StoreError struct {
	Err       error
	Operation string
	Timestamp time.Time
	Category  ErrorCategory
}

// NewStoreError wraps err with a category and the failing operation.
func NewStoreError(category ErrorCategory, operation string, err error) *StoreError {
	return &StoreError{Err: err, Operation: operation, Category: category, Timestamp: time.Now()}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("[%v] %s: %v", e.Category, e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the store can no longer accept appends.
func (e *StoreError) IsFatal() bool {
	return e.Category == ErrorInitialization || e.Category == ErrorRotation || e.Category == ErrorClosed
}

// CategoryOf returns the category of the first StoreError in err's chain,
// or zero when there is none.
func CategoryOf(err error) ErrorCategory {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Category
	}
	return 0
}

func IsInitializationError(err error) bool { return CategoryOf(err) == ErrorInitialization }

func IsInvalidRecordError(err error) bool { return CategoryOf(err) == ErrorInvalidRecord }

func IsWriteError(err error) bool { return CategoryOf(err) == ErrorWrite }

func IsRotationError(err error) bool { return CategoryOf(err) == ErrorRotation }

func IsCloseError(err error) bool { return CategoryOf(err) == ErrorClose }

func IsClosedError(err error) bool { return CategoryOf(err) == ErrorClosed }
