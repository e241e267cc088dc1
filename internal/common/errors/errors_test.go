// internal/common/errors/errors_test.go
package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeSearchQueryFailed, 3},
		{ErrCodeServiceUnavailable, 3},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeRateLimited, 2},
		{ErrCodeAgentTimeout, 1},
		{ErrCodeRetrievalUnavailable, 1},
		{ErrCodeAgentNotApplicable, 0},
		{ErrCodeInvalidRequest, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetRetryCount(tt.code))
		})
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeAgentTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeAgentNotApplicable))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidRequest))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "RETRIEVAL", GetErrorCategory(ErrCodeRetrievalUnavailable))
	assert.Equal(t, "RETRIEVAL", GetErrorCategory(ErrCodeSearchTimeout))
	assert.Equal(t, "AGENT", GetErrorCategory(ErrCodeAgentTimeout))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeRateLimited))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRequest))
}

func TestStandardError_ErrorString(t *testing.T) {
	err := NewAgentTimeoutError("LoanSpecialist")
	assert.Contains(t, err.Error(), "AGENT_TIMEOUT")
	assert.True(t, err.Retryable)
}
