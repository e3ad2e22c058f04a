// Package errors provides the credential service error taxonomy.
// Every component boundary returns *AppError so callers can branch on Code
// and transports can map HTTPStatus without inspecting causes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message, safe to show to clients.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error. It never leaves the process.
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

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Is reports whether any error in err's chain is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// --- Input ---

// InvalidInput creates an error for malformed or blank client input.
func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// DuplicateUser creates an error for a username that is already registered.
func DuplicateUser() *AppError {
	return New(ErrCodeDuplicateUser, "Username already exists.", http.StatusBadRequest)
}

// NotFound creates an error for a route that does not exist.
func NotFound() *AppError {
	return New(ErrCodeNotFound, "The requested resource was not found.", http.StatusNotFound)
}

// MethodNotAllowed creates an error for a known route called with the wrong method.
func MethodNotAllowed() *AppError {
	return New(ErrCodeMethodNotAllowed, "Method not allowed.", http.StatusMethodNotAllowed)
}

// --- Authentication ---

// AuthenticationFailed is returned for every failed login. It never says
// whether the account exists.
func AuthenticationFailed() *AppError {
	return New(ErrCodeAuthenticationFailed, "Invalid username or password.", http.StatusUnauthorized)
}

// Unauthorized creates an error for a missing or unusable bearer credential.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason, http.StatusUnauthorized)
}

// RateLimited creates an error for too many attempts.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
}

// --- Credential integrity ---

// MalformedHash creates an error for a stored hash that is not in a known format.
func MalformedHash(reason string) *AppError {
	return New(ErrCodeMalformedHash, "Stored password hash is malformed: "+reason, http.StatusInternalServerError)
}

// MalformedToken creates an error for a token that cannot be parsed.
func MalformedToken() *AppError {
	return New(ErrCodeMalformedToken, "Malformed authentication token.", http.StatusUnauthorized)
}

// SignatureInvalid creates an error for a token whose signature does not verify.
func SignatureInvalid() *AppError {
	return New(ErrCodeSignatureInvalid, "Invalid token signature.", http.StatusUnauthorized)
}

// IssuerMismatch creates an error for a token from an unexpected issuer.
func IssuerMismatch() *AppError {
	return New(ErrCodeIssuerMismatch, "Token issuer is not accepted.", http.StatusUnauthorized)
}

// AudienceMismatch creates an error for a token minted for another audience.
func AudienceMismatch() *AppError {
	return New(ErrCodeAudienceMismatch, "Token audience is not accepted.", http.StatusUnauthorized)
}

// TokenExpired creates an error for an expired token.
func TokenExpired() *AppError {
	return New(ErrCodeTokenExpired, "Your session has expired. Please log in again.", http.StatusUnauthorized)
}

// --- Internal ---

// Configuration creates a startup-fatal configuration error.
func Configuration(format string, args ...any) *AppError {
	return New(ErrCodeConfiguration, fmt.Sprintf(format, args...), http.StatusInternalServerError)
}

// Storage wraps a repository failure. The message stays generic.
func Storage(cause error) *AppError {
	return New(ErrCodeStorage, "A storage error occurred. Please try again.", http.StatusInternalServerError).WithCause(cause)
}

// Internal creates an error for an unexpected server failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.", http.StatusInternalServerError).WithCause(cause)
}

// ServiceUnavailable creates an error for a dependency that is not ready.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service), http.StatusServiceUnavailable).
		WithDetail("service", service)
}

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
