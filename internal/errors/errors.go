// Package errors provides the error taxonomy of the budgeting engine.
// Every service-layer error is an AppError so the HTTP and CLI boundaries
// can surface a stable code without leaking storage details.
package errors

import (
	stderrors "errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError carrying the same code, so that
// errors.Is(err, ErrNotALeaf) holds for wrapped and re-messaged copies.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Code extracts the AppError code from err, or "" if err is not an AppError.
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Access errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "A valid API key is required", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Category tree errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name and kind already exists", StatusCode: http.StatusConflict}
	ErrInvalidHierarchy    = &AppError{Code: "INVALID_HIERARCHY", Message: "Parent must be an aggregate category of the same kind", StatusCode: http.StatusUnprocessableEntity}
	ErrCategoryHasChildren = &AppError{Code: "HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrCorruptHierarchy    = &AppError{Code: "CORRUPT_HIERARCHY", Message: "Category hierarchy contains a cycle", StatusCode: http.StatusInternalServerError}
	ErrNotALeaf            = &AppError{Code: "NOT_A_LEAF", Message: "Operation requires a leaf category", StatusCode: http.StatusUnprocessableEntity}
	ErrInvalidKind         = &AppError{Code: "INVALID_KIND", Message: "Kind must be income or expense", StatusCode: http.StatusBadRequest}
)

// Ledger errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Invalid amount", StatusCode: http.StatusBadRequest}
	ErrInvalidDate         = &AppError{Code: "INVALID_DATE", Message: "Invalid date, expected YYYY-MM-DD or DD.MM.YYYY", StatusCode: http.StatusBadRequest}
	ErrInvalidPeriod       = &AppError{Code: "INVALID_PERIOD", Message: "Period must be historical or current", StatusCode: http.StatusBadRequest}
	ErrReservedKey         = &AppError{Code: "RESERVED_KEY", Message: "Key is reserved by an aggregate category", StatusCode: http.StatusUnprocessableEntity}
)

// Analysis errors.
var (
	ErrInvalidDimension = &AppError{Code: "INVALID_DIMENSION", Message: "Unknown pivot dimension", StatusCode: http.StatusBadRequest}
)
