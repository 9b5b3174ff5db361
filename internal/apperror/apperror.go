// Package apperror carries the structured failures returned by the ledger
// services. Every error that crosses an operation boundary is an *AppError
// (possibly wrapped) so the HTTP layer can render kind + message.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error codes.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeStore        = "STORE_ERROR"
	CodeDuplicate    = "DUPLICATE_ENTRY"
	CodeLockTimeout  = "LOCK_TIMEOUT"
	CodePartialApply = "PARTIAL_APPLY"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the structured failure surfaced to callers.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to the error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewNotFound reports a missing product, route, vehicle or ledger entry.
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewValidation reports bad caller input.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewStore wraps a failure of the underlying access layer.
func NewStore(op string, err error) *AppError {
	return &AppError{
		Code:       CodeStore,
		Message:    fmt.Sprintf("store %s failed", op),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDuplicate reports an insert whose id already exists.
func NewDuplicate(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s already exists", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewLockTimeout reports that a per-key write lock could not be obtained.
func NewLockTimeout(key string, err error) *AppError {
	return &AppError{
		Code:       CodeLockTimeout,
		Message:    "ledger key is busy, retry later",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"key": key},
		Err:        err,
	}
}

// NewPartialApply reports a dispatch that was persisted while some of its stock
// increments failed. The caller must reconcile.
func NewPartialApply(dispatchID string, failedProducts []int64, err error) *AppError {
	return &AppError{
		Code:       CodePartialApply,
		Message:    "dispatch recorded but stock ledger was not fully updated",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"dispatchId": dispatchID, "failedProductIds": failedProducts},
		Err:        err,
	}
}

// NewInternal hides the cause from clients.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromValidator converts validator.ValidationErrors into a VALIDATION_ERROR
// listing the failing fields.
func FromValidator(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidation(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}

	appErr := NewValidation("invalid " + strings.Join(names, ", "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}

// AsAppError extracts an AppError from the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the status for any error; unknown errors are 500.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsValidation reports whether err carries CodeValidation.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsDuplicate reports whether err carries CodeDuplicate.
func IsDuplicate(err error) bool { return hasCode(err, CodeDuplicate) }
