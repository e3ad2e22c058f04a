package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeInvalidInput indicates the request input is malformed or blank.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeDuplicateUser indicates the username is already registered.
	ErrCodeDuplicateUser ErrorCode = "DUPLICATE_USER"
)

// Routing errors
const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// Authentication errors
const (
	// ErrCodeAuthenticationFailed is the single, undifferentiated login failure.
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	// ErrCodeUnauthorized indicates a protected route was called without credentials.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimited indicates the client exceeded its attempt budget.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Credential integrity errors
const (
	ErrCodeMalformedHash    ErrorCode = "MALFORMED_HASH"
	ErrCodeMalformedToken   ErrorCode = "MALFORMED_TOKEN"
	ErrCodeSignatureInvalid ErrorCode = "SIGNATURE_INVALID"
	ErrCodeIssuerMismatch   ErrorCode = "ISSUER_MISMATCH"
	ErrCodeAudienceMismatch ErrorCode = "AUDIENCE_MISMATCH"
	ErrCodeTokenExpired     ErrorCode = "TOKEN_EXPIRED"
)

// Internal errors
const (
	// ErrCodeConfiguration indicates invalid startup configuration.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeStorage indicates the user repository failed.
	ErrCodeStorage ErrorCode = "STORAGE"
	// ErrCodeInternal indicates an unexpected server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeServiceUnavailable indicates a dependency is not ready.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRateLimited:        true,
	ErrCodeStorage:            true,
	ErrCodeServiceUnavailable: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// tokenCodes are the failures a caller recovers from by re-authenticating.
var tokenCodes = map[ErrorCode]bool{
	ErrCodeMalformedToken:   true,
	ErrCodeSignatureInvalid: true,
	ErrCodeIssuerMismatch:   true,
	ErrCodeAudienceMismatch: true,
	ErrCodeTokenExpired:     true,
}

// IsTokenCode reports whether code is one of the token validation failures.
func IsTokenCode(code ErrorCode) bool {
	return tokenCodes[code]
}
