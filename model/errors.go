package model

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error codes.
const (
	ErrUnknownOperation      = "UNKNOWN_OPERATION"
	ErrInvalidOperationUsage = "INVALID_OPERATION_USAGE"
	ErrDisabledExecution     = "DISABLED_EXECUTION"
	ErrBackendError          = "BACKEND_ERROR"
)

// ErrorEnvelope is the standard error carried by engine failures.
// It implements the error interface.
type ErrorEnvelope struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	OperationID string `json:"operation_id,omitempty"`

	// Cause holds the underlying transport error for BACKEND_ERROR
	// envelopes; it is passed through unchanged by the engine.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *ErrorEnvelope) Unwrap() error {
	return e.Cause
}

// NewUnknownOperationError reports an operation ID absent from the
// descriptor table. Fatal to the call, surfaced at classification time.
func NewUnknownOperationError(operationID string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:        ErrUnknownOperation,
		Message:     fmt.Sprintf("operation %q is not declared in the descriptor table", operationID),
		OperationID: operationID,
	}
}

// NewInvalidUsageError reports a query entry point invoked on a
// mutation-method operation or vice versa. entryPoint names the misused
// entry point ("Query" or "Mutation"); mode names the expected classification
// ("query" or "mutation").
func NewInvalidUsageError(operationID string, method Method, mode, entryPoint string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code: ErrInvalidOperationUsage,
		Message: fmt.Sprintf(
			"Operation '%s' uses method %s and is not a %s operation; it cannot be used with %s()",
			operationID, method, mode, entryPoint,
		),
		OperationID: operationID,
	}
}

// NewDisabledExecutionError reports an execute attempt while the enabled
// gate is false. Recoverable: delivered through the normal failure channel,
// never thrown in a way that crashes the caller.
func NewDisabledExecutionError(operationID string, unresolved []string) *ErrorEnvelope {
	msg := fmt.Sprintf("operation %q is disabled and was not executed", operationID)
	if len(unresolved) > 0 {
		msg = fmt.Sprintf(
			"operation %q: path parameters not resolved: %s",
			operationID, strings.Join(unresolved, ", "),
		)
	}
	return &ErrorEnvelope{
		Code:        ErrDisabledExecution,
		Message:     msg,
		OperationID: operationID,
	}
}

// NewBackendError wraps a transport/store failure for pass-through.
func NewBackendError(operationID string, cause error) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:        ErrBackendError,
		Message:     fmt.Sprintf("operation %q failed: %v", operationID, cause),
		OperationID: operationID,
		Cause:       cause,
	}
}

// IsCode reports whether err is an ErrorEnvelope carrying the given code.
func IsCode(err error, code string) bool {
	var env *ErrorEnvelope
	if errors.As(err, &env) {
		return env.Code == code
	}
	return false
}

// IsDisabledExecution reports whether err is the recoverable
// disabled-execution failure.
func IsDisabledExecution(err error) bool {
	return IsCode(err, ErrDisabledExecution)
}
