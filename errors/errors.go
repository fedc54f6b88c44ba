package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified rex error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// --- Configuration errors ---

// MissingDependency creates an error for a unit whose needs cannot be resolved.
func MissingDependency(unit string, missing ...string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingDependency,
		Message: fmt.Sprintf("%s is missing dependencies: %s", unit, strings.Join(missing, ", ")),
		Details: map[string]any{"unit": unit, "missing": missing},
	}
}

// CyclicalReferences creates an error listing the units that take part in a cycle.
func CyclicalReferences(kind string, ids ...string) *AppError {
	return &AppError{
		Code:    ErrCodeCyclicalReference,
		Message: fmt.Sprintf("cyclical %s references found: %s", kind, strings.Join(ids, ", ")),
		Details: map[string]any{"kind": kind, "ids": ids},
	}
}

// UnknownKind creates an error for a `uses` value with no registered descriptor.
func UnknownKind(kind, uses string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownKind,
		Message: fmt.Sprintf("%s kind '%s' not found", kind, uses),
		Details: map[string]any{"kind": kind, "uses": uses},
	}
}

// NotFound creates an error for a unit or resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
		Details: details,
	}
}

// AlreadyExists creates an error for a duplicate registration.
func AlreadyExists(resource, id string) *AppError {
	return &AppError{
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("%s '%s' already exists", resource, id),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// InvalidConfig creates an error for malformed configuration.
func InvalidConfig(source, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("invalid configuration in %s: %s", source, reason),
		Details: map[string]any{"source": source},
	}
}

// Validation creates an error for failed struct validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// --- Execution errors ---

// MissingInputs creates an error listing required inputs that were not supplied.
func MissingInputs(kind, unit string, names ...string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingInputs,
		Message: fmt.Sprintf("missing required inputs for %s %s: %s", kind, unit, strings.Join(names, ", ")),
		Details: map[string]any{"unit": unit, "inputs": names},
	}
}

// Cancelled creates an error for a cancelled unit or run.
func Cancelled(unit string) *AppError {
	return &AppError{
		Code:    ErrCodeCancelled,
		Message: fmt.Sprintf("%s was cancelled", unit),
		Details: map[string]any{"unit": unit},
	}
}

// Timeout creates an error for a unit that exceeded its timeout.
func Timeout(unit string) *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("%s timed out", unit),
		Details: map[string]any{"unit": unit},
	}
}

// Execution wraps an error returned by a unit body.
func Execution(unit string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeExecution,
		Message: fmt.Sprintf("%s failed", unit),
		Details: map[string]any{"unit": unit},
		Cause:   cause,
	}
}

// --- Pipeline-internal errors ---

// ServiceNotFound creates an error for a missing shared service.
func ServiceNotFound(name string) *AppError {
	return &AppError{
		Code:    ErrCodeServiceNotFound,
		Message: fmt.Sprintf("service not found: %s", name),
		Details: map[string]any{"service": name},
	}
}

// NextCalledTwice creates an error for a middleware that invoked next more than once.
func NextCalledTwice(index int) *AppError {
	return &AppError{
		Code:    ErrCodeNextCalledTwice,
		Message: fmt.Sprintf("next() called multiple times by middleware %d", index),
		Details: map[string]any{"middleware": index},
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// FromPanic normalizes a recovered value into an error. Errors are kept as
// they are; anything else becomes an INTERNAL_ERROR.
func FromPanic(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf("unknown error: %v", v),
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && IsConfigurationCode(appErr.Code)
}
