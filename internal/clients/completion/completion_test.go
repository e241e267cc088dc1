// internal/clients/completion/completion_test.go
package completion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"http 429", errors.New("API returned unexpected status code: 429"), ErrRateLimited},
		{"rate limit message", errors.New("rate limit exceeded, retry later"), ErrRateLimited},
		{"too many requests", errors.New("Too Many Requests"), ErrRateLimited},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrServiceUnavailable},
		{"http 500", errors.New("API returned unexpected status code: 500"), ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.expected)
		})
	}
}
