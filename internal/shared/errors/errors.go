// Package errors provides application-level error types and utilities for the
// entitlement and settlement core. Besides the generic validation/not-found/
// conflict kinds it carries the settlement-specific taxonomy: signature
// mismatch, duplicate transaction, quota exceeded, entitlement divergence and
// gateway unavailability.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal_error"

	// Settlement-specific error types.
	ErrorTypeSignatureMismatch     ErrorType = "signature_mismatch"
	ErrorTypeDuplicateTransaction  ErrorType = "duplicate_transaction"
	ErrorTypeQuotaExceeded         ErrorType = "quota_exceeded"
	ErrorTypeEntitlementDivergence ErrorType = "entitlement_divergence"
	ErrorTypeGatewayUnavailable    ErrorType = "gateway_unavailable"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(t ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details...)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details...)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details...)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details...)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

// NewSignatureMismatchError reports a callback whose authentication code did
// not verify. This category must halt entitlement mutation; the user-visible
// message stays generic, the detail is for server-side logs only.
func NewSignatureMismatchError(details ...string) *AppError {
	return newAppError(ErrorTypeSignatureMismatch, http.StatusBadRequest, "payment verification failed", details...)
}

// NewDuplicateTransactionError reports an idempotent replay of a transaction
// already in a terminal state. It is not a failure and is logged at low severity.
func NewDuplicateTransactionError(transactionID string) *AppError {
	return newAppError(ErrorTypeDuplicateTransaction, http.StatusOK, "transaction already processed", transactionID)
}

// NewQuotaExceededError reports an expected business-rule denial with a
// descriptive remaining-usage message.
func NewQuotaExceededError(message string) *AppError {
	return newAppError(ErrorTypeQuotaExceeded, http.StatusForbidden, message)
}

// NewGatewayUnavailableError reports a timeout or transport failure talking to
// the external payment gateway. Retryable by the caller during session
// creation; during callback handling it is logged for manual reconciliation.
func NewGatewayUnavailableError(details ...string) *AppError {
	return newAppError(ErrorTypeGatewayUnavailable, http.StatusServiceUnavailable, "payment gateway unavailable", details...)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks whether the error is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsSignatureMismatch checks if the error is a signature mismatch error
func IsSignatureMismatch(err error) bool {
	return IsType(err, ErrorTypeSignatureMismatch)
}

// IsQuotaExceeded checks if the error is a quota denial
func IsQuotaExceeded(err error) bool {
	return IsType(err, ErrorTypeQuotaExceeded)
}

// IsGatewayUnavailable checks if the error is a gateway availability error
func IsGatewayUnavailable(err error) bool {
	return IsType(err, ErrorTypeGatewayUnavailable)
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// SQLite unique violation
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL unique violation
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "violates unique constraint") {
		return true
	}
	return false
}
