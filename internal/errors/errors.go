package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound  ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-002"
	ErrCodeRevisionMissing ErrorCode = "CONFIG-003"
	ErrCodeToolMissing     ErrorCode = "CONFIG-004"
	ErrCodeImageRefInvalid ErrorCode = "CONFIG-005"

	// Library injection errors (LIB-001 to LIB-099)
	ErrCodeRegistryInvalid ErrorCode = "LIB-001"
	ErrCodeInjectFailed    ErrorCode = "LIB-002"

	// Tree snapshot errors (VCS-001 to VCS-099)
	ErrCodeCheckoutFailed ErrorCode = "VCS-001"

	// Workload errors (RUN-001 to RUN-099)
	ErrCodeInvocationFault ErrorCode = "RUN-001"

	// Verification outcomes (VERIFY-001 to VERIFY-099)
	ErrCodeVerificationFailed ErrorCode = "VERIFY-001"
)

// HarnessError is an error carrying a stable code and an optional cause.
type HarnessError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *HarnessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// New creates a new HarnessError
func New(code ErrorCode, message string) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new HarnessError with a formatted message
func Newf(code ErrorCode, format string, args ...any) *HarnessError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new HarnessError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of err if it is (or wraps) a HarnessError,
// or the empty code otherwise.
func CodeOf(err error) ErrorCode {
	var he *HarnessError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

// IsVerificationFailure reports whether err represents services exiting
// nonzero, as opposed to a configuration error or an invocation fault.
// A verification failure is an expected, reportable outcome.
func IsVerificationFailure(err error) bool {
	return CodeOf(err) == ErrCodeVerificationFailed
}

// IsConfiguration reports whether err is a configuration error: a condition
// detected before any tree mutation, where no partial run was attempted.
func IsConfiguration(err error) bool {
	switch CodeOf(err) {
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeRevisionMissing,
		ErrCodeToolMissing, ErrCodeImageRefInvalid, ErrCodeRegistryInvalid:
		return true
	}
	return false
}
