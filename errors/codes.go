package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors. These fail the whole run and are never retried.
const (
	// ErrCodeMissingDependency indicates a unit needs an id that is not declared.
	ErrCodeMissingDependency ErrorCode = "MISSING_DEPENDENCY"
	// ErrCodeCyclicalReference indicates the needs graph contains a cycle.
	ErrCodeCyclicalReference ErrorCode = "CYCLICAL_REFERENCE"
	// ErrCodeUnknownKind indicates a unit uses a kind with no registered descriptor.
	ErrCodeUnknownKind ErrorCode = "UNKNOWN_KIND"
	// ErrCodeNotFound indicates a requested unit or resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates a registry already holds the id.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeInvalidConfig indicates a malformed rexfile or runner configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeValidation indicates struct validation failed.
	ErrCodeValidation ErrorCode = "VALIDATION"
)

// Execution errors. These fail a single unit.
const (
	// ErrCodeMissingInputs indicates required descriptor inputs were not supplied.
	ErrCodeMissingInputs ErrorCode = "MISSING_INPUTS"
	// ErrCodeCancelled indicates the unit was cancelled.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeTimeout indicates the unit exceeded its timeout.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExecution indicates a unit body returned an error.
	ErrCodeExecution ErrorCode = "EXECUTION_FAILED"
)

// Pipeline-internal errors. These are programming errors.
const (
	// ErrCodeServiceNotFound indicates a required shared service is not registered.
	ErrCodeServiceNotFound ErrorCode = "SERVICE_NOT_FOUND"
	// ErrCodeNextCalledTwice indicates a middleware invoked its continuation twice.
	ErrCodeNextCalledTwice ErrorCode = "NEXT_CALLED_TWICE"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var configurationCodes = map[ErrorCode]bool{
	ErrCodeMissingDependency: true,
	ErrCodeCyclicalReference: true,
	ErrCodeUnknownKind:       true,
	ErrCodeNotFound:          true,
	ErrCodeAlreadyExists:     true,
	ErrCodeInvalidConfig:     true,
	ErrCodeValidation:        true,
}

// IsConfigurationCode returns true if the code fails the whole run.
func IsConfigurationCode(code ErrorCode) bool {
	return configurationCodes[code]
}
