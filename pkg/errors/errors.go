package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrRegistryUnavailable = errors.New("registry unavailable")
	ErrUnsupportedRegistry = errors.New("unsupported registry")
	ErrInvalidImage        = errors.New("invalid image format")
	ErrImageNotFound       = errors.New("monitored image not found")
	ErrStateNotFound       = errors.New("image state not found")
	ErrConfigNotFound      = errors.New("configuration not found")
	ErrNotificationFailed  = errors.New("notification failed")
)

// Error carries the operation that failed along with the underlying cause.
type Error struct {
	Op  string // operation that failed, e.g. "hub.FetchAllTags"
	Err error  // underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap annotates err with the failing operation. Returns nil for nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Wrapf annotates err with the failing operation and formatted context.
func Wrapf(op string, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:  op,
		Err: fmt.Errorf(format+": %w", append(args, err)...),
	}
}

// New creates an operation-scoped error with a fixed message.
func New(op, message string) error {
	return &Error{Op: op, Err: errors.New(message)}
}

// Newf creates an operation-scoped error with a formatted message.
func Newf(op, format string, args ...interface{}) error {
	return &Error{Op: op, Err: fmt.Errorf(format, args...)}
}

// GetOperation extracts the operation from a contextual error, if any.
func GetOperation(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
