package errors

// ErrorResponse is the envelope every failed request gets:
//
//	{"error": {"code": "DUPLICATE_USER", "message": "...", "retryable": false}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError. Cause and
// HTTPStatus stay server-side.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	// RequestID echoes X-Request-ID so a client report can be matched to logs.
	RequestID string `json:"request_id,omitempty"`
}

// ToResponse builds the response envelope for e.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// ForRequest is ToResponse with the request ID filled in.
func (e *AppError) ForRequest(requestID string) ErrorResponse {
	resp := e.ToResponse()
	resp.Error.RequestID = requestID
	return resp
}
