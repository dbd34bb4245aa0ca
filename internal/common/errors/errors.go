// Package errors provides standardized error handling for the RFQ pipeline.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingAPIKey         ErrorCode = "MISSING_API_KEY"
	ErrCodeExtractionTimeout     ErrorCode = "EXTRACTION_TIMEOUT"
	ErrCodeExtractionFailed      ErrorCode = "EXTRACTION_FAILED"
	ErrCodeModelNotFound         ErrorCode = "MODEL_NOT_FOUND"
	ErrCodeMalformedModelOutput  ErrorCode = "MALFORMED_MODEL_OUTPUT"
	ErrCodeLowConfidence         ErrorCode = "LOW_CONFIDENCE"
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodePricingUnavailable    ErrorCode = "PRICING_BACKEND_UNAVAILABLE"
	ErrCodePricingTimeout        ErrorCode = "PRICING_TIMEOUT"
	ErrCodeQuoteResolutionFailed ErrorCode = "QUOTE_RESOLUTION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDraftNotFound            ErrorCode = "DRAFT_NOT_FOUND"

	ErrCodeTelemetryWriteFailed   ErrorCode = "TELEMETRY_WRITE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMissingAPIKeyError creates a non-retryable configuration error.
func NewMissingAPIKeyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingAPIKey,
		Message:   "Extraction API key is not configured",
		Details:   "set GROQ_API_KEY or extraction.api_key",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTextTooShortError creates a non-retryable boundary rejection.
func NewTextTooShortError(length, minimum int) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input text is too short to extract an RFQ",
		Details:   fmt.Sprintf("length: %d, minimum: %d", length, minimum),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionTimeoutError creates a retryable extraction timeout error.
func NewExtractionTimeoutError(model string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionTimeout,
		Message:   "Extraction API call exceeded timeout",
		Details:   fmt.Sprintf("model: %s", model),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates a retryable extraction API error.
func NewExtractionFailedError(model string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Extraction API error",
		Details:   fmt.Sprintf("model: %s, error: %s", model, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelNotFoundError creates a non-retryable model availability error.
// The cascade handles this by advancing to the next model.
func NewModelNotFoundError(model string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotFound,
		Message:   "Requested model is not available",
		Details:   fmt.Sprintf("model: %s", model),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedModelOutputError creates a non-retryable parse error.
func NewMalformedModelOutputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedModelOutput,
		Message:   "Model output could not be parsed as an RFQ",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLowConfidenceError creates a non-retryable confidence gate error.
func NewLowConfidenceError(confidence, threshold float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeLowConfidence,
		Message:   "Extraction confidence below acceptance threshold",
		Details:   fmt.Sprintf("confidence: %.2f, threshold: %.2f", confidence, threshold),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingUnavailableError creates a retryable pricing backend error.
func NewPricingUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePricingUnavailable,
		Message:   "Pricing backend error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingTimeoutError creates a non-retryable (falls back locally) pricing timeout error.
func NewPricingTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodePricingTimeout,
		Message:   "Pricing backend call exceeded timeout",
		Details:   "falling back to local estimation",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQuoteResolutionFailedError creates a non-retryable resolution error.
// Only reachable when both the remote backend and the local fallback fail.
func NewQuoteResolutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuoteResolutionFailed,
		Message:   "Quote resolution failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftNotFoundError creates a non-retryable lookup error.
func NewDraftNotFoundError(draftID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftNotFound,
		Message:   "RFQ draft not found",
		Details:   fmt.Sprintf("draftId: %s", draftID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTelemetryWriteFailedError creates a retryable telemetry sink error.
func NewTelemetryWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTelemetryWriteFailed,
		Message:   "Telemetry record could not be written",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Status Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeMissingAPIKey:         http.StatusServiceUnavailable,
	ErrCodeExtractionTimeout:     http.StatusGatewayTimeout,
	ErrCodeExtractionFailed:      http.StatusBadGateway,
	ErrCodeModelNotFound:         http.StatusBadGateway,
	ErrCodeMalformedModelOutput:  http.StatusUnprocessableEntity,
	ErrCodeLowConfidence:         http.StatusUnprocessableEntity,
	ErrCodeValidationFailed:      http.StatusBadRequest,
	ErrCodePricingUnavailable:    http.StatusBadGateway,
	ErrCodePricingTimeout:        http.StatusGatewayTimeout,
	ErrCodeQuoteResolutionFailed: http.StatusInternalServerError,

	ErrCodeDatabaseConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeDatabaseInsertFailed:     http.StatusInternalServerError,
	ErrCodeDraftNotFound:            http.StatusNotFound,

	ErrCodeTelemetryWriteFailed:   http.StatusInternalServerError,
	ErrCodeNotificationSendFailed: http.StatusBadGateway,
}

// HTTPStatus returns the HTTP status code for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeTelemetryWriteFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeExtractionFailed,
		ErrCodePricingUnavailable:
		return 2

	case ErrCodeExtractionTimeout:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "CONFIDENCE"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "PRICING") || strings.Contains(codeStr, "QUOTE"):
		return "PRICING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "DRAFT"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "TELEMETRY"):
		return "TELEMETRY"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "API_KEY"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
