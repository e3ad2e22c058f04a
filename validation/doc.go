// Package validation checks request bodies against struct tags and turns
// failures into INVALID_INPUT errors with per-field details.
//
//	type RegisterRequest struct {
//	    Username string `json:"username" validate:"max=150"`
//	}
//	if err := validation.Validate(req); err != nil {
//	    // *errors.AppError, Details["fields"] is []FieldError
//	}
package validation
