// Package errors provides error types and handling for the ladder admin client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Network represents network-related errors (DNS, connection).
	Network
	// Timeout represents timeout errors.
	Timeout
	// Transport represents a non-200 HTTP status from the backend.
	Transport
	// Application represents an envelope whose result is not "success".
	Application
	// Precondition represents a client-side check that stopped the request.
	Precondition
	// Declined represents a user refusing a confirmation prompt.
	Declined
	// Parse represents parsing errors (HTML, JSON).
	Parse
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Network:
		return "network"
	case Timeout:
		return "timeout"
	case Transport:
		return "transport"
	case Application:
		return "application"
	case Precondition:
		return "precondition"
	case Declined:
		return "declined"
	case Parse:
		return "parse"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// LadderError represents a categorized client error.
// No error is retried automatically; every failure ends the user action.
type LadderError struct {
	Type       ErrorType
	Command    string
	URL        string
	Message    string
	Reason     string // backend-supplied reason for Application errors
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *LadderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(" error")
	if e.Command != "" {
		b.WriteString(" during ")
		b.WriteString(e.Command)
	}
	if e.URL != "" {
		b.WriteString(" on ")
		b.WriteString(e.URL)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *LadderError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *LadderError) Is(target error) bool {
	t, ok := target.(*LadderError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// UserMessage returns the text shown to the user in an alert.
func (e *LadderError) UserMessage() string {
	switch e.Type {
	case Application:
		return "Error: " + e.Reason
	case Transport:
		return fmt.Sprintf("oops, something failed (error=%d)", e.StatusCode)
	case Network, Timeout:
		return "oops, something failed (error=0)"
	default:
		return e.Message
	}
}

// New creates a new LadderError.
func New(errType ErrorType, command, url, message string, cause error) *LadderError {
	return &LadderError{
		Type:    errType,
		Command: command,
		URL:     url,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(url, command string, cause error) *LadderError {
	return New(Network, command, url, "network failure", cause)
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(url, command string, cause error) *LadderError {
	return New(Timeout, command, url, "request timed out", cause)
}

// NewTransportError creates an error for a non-200 backend status.
func NewTransportError(url string, statusCode int) *LadderError {
	err := New(Transport, "", url, fmt.Sprintf("backend returned %d", statusCode), nil)
	err.StatusCode = statusCode
	return err
}

// NewApplicationError creates an error for a failed envelope.
func NewApplicationError(command, url, reason string) *LadderError {
	err := New(Application, command, url, "backend reported failure", nil)
	err.Reason = reason
	return err
}

// NewPreconditionError creates a client-side precondition error.
// The message is shown to the user verbatim.
func NewPreconditionError(command, message string) *LadderError {
	return New(Precondition, command, "", message, nil)
}

// NewDeclinedError creates an error for a refused confirmation.
func NewDeclinedError(command string) *LadderError {
	return New(Declined, command, "", "cancelled by user", nil)
}

// NewParseError creates a parse error.
func NewParseError(url, command string, cause error) *LadderError {
	return New(Parse, command, url, "parsing failed", cause)
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(url, command string) *LadderError {
	return New(Cancelled, command, url, "operation cancelled", nil)
}

// Categorize determines the error type from a generic transport error.
func Categorize(err error, url string) *LadderError {
	if err == nil {
		return nil
	}

	var ladderErr *LadderError
	if errors.As(err, &ladderErr) {
		return ladderErr
	}

	if errors.Is(err, context.Canceled) {
		return NewCancelledError(url, "")
	}

	if isTimeout(err) {
		return NewTimeoutError(url, "", err)
	}

	if isNetworkError(err) {
		return NewNetworkError(url, "", err)
	}

	return New(Unknown, "", url, err.Error(), err)
}

// CategorizeHTTPStatus creates an error from an HTTP status code.
// Anything other than 200 is a transport failure.
func CategorizeHTTPStatus(statusCode int, url string) *LadderError {
	if statusCode == 200 {
		return nil
	}
	return NewTransportError(url, statusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp")
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var ladderErr *LadderError
	if errors.As(err, &ladderErr) {
		return ladderErr.Type
	}
	return Unknown
}

// GetStatusCode extracts the status code from an error.
func GetStatusCode(err error) int {
	var ladderErr *LadderError
	if errors.As(err, &ladderErr) {
		return ladderErr.StatusCode
	}
	return 0
}

// IsPrecondition reports whether err stopped a request before it was sent.
func IsPrecondition(err error) bool {
	return GetErrorType(err) == Precondition
}

// IsApplication reports whether err is a backend-reported failure.
func IsApplication(err error) bool {
	return GetErrorType(err) == Application
}

// IsDeclined reports whether err is a refused confirmation.
func IsDeclined(err error) bool {
	return GetErrorType(err) == Declined
}

// UserMessage returns the alert text for err.
func UserMessage(err error) string {
	var ladderErr *LadderError
	if errors.As(err, &ladderErr) {
		return ladderErr.UserMessage()
	}
	return err.Error()
}
