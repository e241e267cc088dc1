// Package errors provides standardized error handling for the answering engine.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRetrievalUnavailable ErrorCode = "RETRIEVAL_UNAVAILABLE"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound        ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeAgentNotApplicable ErrorCode = "AGENT_NOT_APPLICABLE"
	ErrCodeAgentTimeout       ErrorCode = "AGENT_TIMEOUT"

	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeWebSearchTimeout   ErrorCode = "WEB_SEARCH_TIMEOUT"
	ErrCodeWebSearchFailed    ErrorCode = "WEB_SEARCH_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
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

// NewRetrievalUnavailableError is raised when every retrieval source failed.
// Surfaced to callers as a degraded Answer, never a hard failure.
func NewRetrievalUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalUnavailable,
		Message:   "All retrieval sources failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable retrieval source error.
func NewSearchQueryFailedError(origin string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Retrieval source query error",
		Details:   fmt.Sprintf("origin: %s, error: %s", origin, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable retrieval timeout error.
func NewSearchTimeoutError(origin string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Retrieval source timeout",
		Details:   fmt.Sprintf("origin: %s", origin),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable missing index error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Search index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentNotApplicableError marks a specialist declining a question;
// recovered locally by the coordinator, never reaches callers.
func NewAgentNotApplicableError(agentType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentNotApplicable,
		Message:   "Specialist declined the question",
		Details:   fmt.Sprintf("agentType: %s", agentType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentTimeoutError creates an agent timeout error; recovered by the
// single fallback retry.
func NewAgentTimeoutError(agentType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentTimeout,
		Message:   "Specialist call exceeded its time box",
		Details:   fmt.Sprintf("agentType: %s", agentType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError creates a retryable completion service error.
func NewServiceUnavailableError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("External service '%s' unavailable", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a retryable rate limit error.
func NewRateLimitedError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   fmt.Sprintf("External service '%s' rate limited the request", service),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebSearchTimeoutError creates a non-retryable (returns empty) web search timeout error.
func NewWebSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeWebSearchTimeout,
		Message:   "Web search API timeout",
		Details:   "Search call exceeded timeout threshold",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebSearchFailedError creates a retryable web search error.
func NewWebSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebSearchFailed,
		Message:   "Web search API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache infrastructure error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSearchQueryFailed,
		ErrCodeServiceUnavailable,
		ErrCodeWebSearchFailed,
		ErrCodeCacheUnavailable:
		return 3 // Retryable technical errors

	case ErrCodeSearchTimeout,
		ErrCodeRateLimited:
		return 2 // Partial retry for timeouts and throttling

	case ErrCodeAgentTimeout,
		ErrCodeRetrievalUnavailable:
		return 1 // Single fallback retry budget

	default:
		return 0 // Business errors: no retry
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
	case strings.Contains(codeStr, "RETRIEVAL") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "AGENT"):
		return "AGENT"
	case strings.Contains(codeStr, "SERVICE") || strings.Contains(codeStr, "RATE"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
