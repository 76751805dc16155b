package errors

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

// Exit codes for different error scenarios
const (
	ExitSuccess          = 0 // Success
	ExitGeneralError     = 1 // General error (missing HOME, write failure, network failure, server 500)
	ExitInvalidArguments = 2 // Invalid arguments/usage (missing path, invalid flag value)
	ExitNotFound         = 3 // Resource not found (404)
	ExitConflict         = 4 // Conflict (409)
	ExitAuthError        = 5 // Authentication error (401)
	ExitPermissionDenied = 6 // Permission denied (403)
)

var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// ExitWithError prints error message and exits with ExitGeneralError
func ExitWithError(err error, message string) {
	if message != "" {
		fmt.Fprintf(stderr, "Error: %s: %v\n", message, err)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	exit(ExitGeneralError)
}

// ExitWithCode prints error message and exits with specific code
func ExitWithCode(code int, message string) {
	if message != "" {
		fmt.Fprintf(stderr, "Error: %s\n", message)
	}
	exit(code)
}

// MapHTTPStatusToExitCode maps HTTP status codes to exit codes
func MapHTTPStatusToExitCode(statusCode int) int {
	switch statusCode {
	case http.StatusUnauthorized:
		return ExitAuthError
	case http.StatusForbidden:
		return ExitPermissionDenied
	case http.StatusNotFound:
		return ExitNotFound
	case http.StatusConflict:
		return ExitConflict
	case http.StatusBadRequest:
		return ExitInvalidArguments
	default:
		if statusCode >= 400 && statusCode < 500 {
			return ExitInvalidArguments
		}
		return ExitGeneralError
	}
}

// HandleHTTPError handles HTTP error responses
func HandleHTTPError(statusCode int, message string) {
	code := MapHTTPStatusToExitCode(statusCode)

	// Add specific suggestions for auth errors
	if statusCode == http.StatusUnauthorized {
		message += ". Try running 'mindflow login' to authenticate"
	}

	ExitWithCode(code, message)
}
