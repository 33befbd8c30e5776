package exitcode

import (
	"os"

	"github.com/verilab/harnessctl/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates a missing or malformed harness configuration
	ConfigError = 3

	// VerificationFailed indicates at least one harness service exited nonzero
	VerificationFailed = 4

	// InvocationFault indicates the container runtime or the revision-control
	// tool could not be invoked at all
	InvocationFault = 5
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch {
	case errors.IsConfiguration(err):
		return ConfigError
	case errors.IsVerificationFailure(err):
		return VerificationFailed
	case errors.CodeOf(err) == errors.ErrCodeInvocationFault,
		errors.CodeOf(err) == errors.ErrCodeCheckoutFailed:
		return InvocationFault
	}

	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration error"
	case VerificationFailed:
		return "Verification failed (at least one service exited nonzero)"
	case InvocationFault:
		return "Invocation fault (docker or git could not be run)"
	default:
		return "Unknown error"
	}
}
