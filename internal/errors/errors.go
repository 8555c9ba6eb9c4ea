// Package errors provides custom error types for the Domus API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

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

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Family errors.
var (
	ErrFamilyNotFound         = &AppError{Code: "FAMILY_NOT_FOUND", Message: "Family not found", StatusCode: http.StatusNotFound}
	ErrNotFamilyAdmin         = &AppError{Code: "NOT_FAMILY_ADMIN", Message: "Only the family administrator may perform this action", StatusCode: http.StatusForbidden}
	ErrFamilyCreationFailed   = &AppError{Code: "FAMILY_CREATION_FAILED", Message: "Failed to create family", StatusCode: http.StatusInternalServerError}
	ErrAdminAssignmentFailed  = &AppError{Code: "ADMIN_ASSIGNMENT_FAILED", Message: "Failed to assign family administrator; the created family was removed", StatusCode: http.StatusInternalServerError}
	ErrUserWithoutFamily      = &AppError{Code: "USER_WITHOUT_FAMILY", Message: "The user has no family assigned", StatusCode: http.StatusForbidden}
)

// Spreadsheet import errors.
var (
	ErrInvalidFile        = &AppError{Code: "INVALID_FILE", Message: "The file must be an Excel workbook (.xlsx, .xlsm, .xls)", StatusCode: http.StatusBadRequest}
	ErrEmptyFile          = &AppError{Code: "EMPTY_FILE", Message: "The uploaded file is empty", StatusCode: http.StatusBadRequest}
	ErrSheetNotFound      = &AppError{Code: "SHEET_NOT_FOUND", Message: "The requested sheet was not found in the workbook", StatusCode: http.StatusBadRequest}
	ErrParseFailed        = &AppError{Code: "PARSE_FAILED", Message: "Failed to parse budgets from the spreadsheet", StatusCode: http.StatusBadRequest}
	ErrNoBudgetsProvided  = &AppError{Code: "NO_BUDGETS_PROVIDED", Message: "No budgets were provided for import", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)
