// Package apperror provides structured error handling for the landed cost engine.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Distribution errors (caller-recoverable, raised before any ledger mutation)
	CodeInvalidDistributionBasis = "INVALID_DISTRIBUTION_BASIS"
	CodeZeroDistributionBasis    = "ZERO_DISTRIBUTION_BASIS"
	CodeSerialCountMismatch      = "SERIAL_COUNT_MISMATCH"

	// Source document errors
	CodeUnsupportedSourceKind = "UNSUPPORTED_SOURCE_KIND"

	// Lifecycle errors (422)
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"

	// Internal consistency failure (500) - indicates a bug, never a user error
	CodeImbalancedPosting = "IMBALANCED_POSTING"

	// Lock contention on a revaluation chain (409, retryable)
	CodeConcurrentRevaluation = "CONCURRENT_REVALUATION"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// AppError is the standard error type for the engine.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, amounts, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInvalidDistributionBasis creates an error for an unrecognized allocation basis.
func NewInvalidDistributionBasis(basis string) *AppError {
	return &AppError{
		Code:       CodeInvalidDistributionBasis,
		Message:    "Unrecognized distribution basis",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"basis": basis},
	}
}

// NewZeroDistributionBasis is returned when the basis total over all item rows
// is zero and the charge pool cannot be divided.
func NewZeroDistributionBasis(basis string) *AppError {
	return &AppError{
		Code:       CodeZeroDistributionBasis,
		Message:    "Total distribution basis is zero, cannot allocate charges",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"basis": basis},
	}
}

// NewSerialCountMismatch is returned when a serialized row's quantity does not
// match the number of serial units attached to it.
func NewSerialCountMismatch(itemCode string, quantity float64, serialCount int) *AppError {
	return &AppError{
		Code:       CodeSerialCountMismatch,
		Message:    "Item quantity does not match serial unit count",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"item_code":    itemCode,
			"quantity":     quantity,
			"serial_count": serialCount,
		},
	}
}

// NewUnsupportedSourceKind is returned for receipt references outside the
// supported source document set.
func NewUnsupportedSourceKind(kind string) *AppError {
	return &AppError{
		Code:       CodeUnsupportedSourceKind,
		Message:    "Unsupported receipt source kind",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"kind": kind},
	}
}

// NewInvalidStateTransition is returned for illegal voucher lifecycle moves,
// e.g. submitting a non-Draft or cancelling a non-Submitted voucher.
func NewInvalidStateTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidStateTransition,
		Message:    fmt.Sprintf("Cannot transition voucher from %s to %s", from, to),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewImbalancedPosting signals that a generated posting set does not balance.
// This is an internal consistency failure: the transaction must abort and the
// error is treated as a bug, not a validation problem.
func NewImbalancedPosting(debit, credit string) *AppError {
	return &AppError{
		Code:       CodeImbalancedPosting,
		Message:    "Generated posting set does not balance",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"total_debit": debit, "total_credit": credit},
	}
}

// NewConcurrentRevaluation is returned when a revaluation chain lock could not
// be acquired in time. The caller may retry; no partial effect remains.
func NewConcurrentRevaluation(itemCode, warehouse string) *AppError {
	return &AppError{
		Code:       CodeConcurrentRevaluation,
		Message:    "Another voucher is revaluing this item and warehouse, retry later",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"item_code": itemCode, "warehouse": warehouse},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode checks if error carries the given machine-readable code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
