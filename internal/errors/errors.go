package errors

import "fmt"

// ErrorCode represents a logoden error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"          // 404
	ErrAlreadyInCatalog ErrorCode = "ALREADY_IN_CATALOG" // 409
	ErrRevisionLimit    ErrorCode = "REVISION_LIMIT"     // 422
	ErrCancelled        ErrorCode = "CANCELLED"          // 499
	ErrInternal         ErrorCode = "INTERNAL"           // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a logo cannot be found.
func NewNotFound(id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("logo not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewAlreadyInCatalog creates a 409 error for a logo that is already
// cataloged. The existing catalog code travels in Details so callers can
// treat the conflict as a confirmation of current state.
func NewAlreadyInCatalog(id, catalogCode string) *Error {
	return &Error{
		Code:    ErrAlreadyInCatalog,
		Status:  409,
		Message: fmt.Sprintf("logo %s is already in the catalog as %s", id, catalogCode),
		Details: map[string]any{"id": id, "catalog_code": catalogCode},
	}
}

// NewRevisionLimit creates a 422 error when an original already carries the
// maximum number of revisions.
func NewRevisionLimit(originalID string, max int) *Error {
	return &Error{
		Code:    ErrRevisionLimit,
		Status:  422,
		Message: fmt.Sprintf("logo %s already has %d revisions", originalID, max),
		Details: map[string]any{"original_logo_id": originalID, "max_revisions": max},
	}
}

// NewCancelled creates a 499 error for a context-cancelled operation.
func NewCancelled(operation string) *Error {
	return &Error{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

// CatalogCode extracts the catalog code from an ALREADY_IN_CATALOG error.
// Returns empty string if the error is not a catalog conflict.
func CatalogCode(err error) string {
	e, ok := err.(*Error)
	if !ok || e.Code != ErrAlreadyInCatalog {
		return ""
	}
	code, _ := e.Details["catalog_code"].(string)
	return code
}
