package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/tandrum/tandrum/internal/logger"
)

// Error kinds. Domain failures wrap one of these so callers can branch
// with errors.Is.
var (
	ErrNotFound         = stderrors.New("not found")
	ErrValidation       = stderrors.New("validation error")
	ErrCapacityExceeded = stderrors.New("capacity exceeded")
	ErrSlotOccupied     = stderrors.New("slot occupied")
)

// NotFound wraps ErrNotFound with a formatted detail
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Validation wraps ErrValidation with a formatted detail
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// CapacityExceeded wraps ErrCapacityExceeded with a formatted detail
func CapacityExceeded(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCapacityExceeded, fmt.Sprintf(format, args...))
}

// SlotOccupied wraps ErrSlotOccupied with a formatted detail
func SlotOccupied(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSlotOccupied, fmt.Sprintf(format, args...))
}

// Kind returns the name of the error kind err wraps, or "internal" for
// anything else (persistence failures and the like).
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrNotFound):
		return "NotFound"
	case stderrors.Is(err, ErrValidation):
		return "ValidationError"
	case stderrors.Is(err, ErrCapacityExceeded):
		return "CapacityExceeded"
	case stderrors.Is(err, ErrSlotOccupied):
		return "SlotOccupied"
	default:
		return "internal"
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", Kind(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
