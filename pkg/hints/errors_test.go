package hints

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"unauthorized", errors.New("401 Unauthorized"), ErrorTypeAuth, false},
		{"invalid key", errors.New("invalid api key provided"), ErrorTypeAuth, false},
		{"model missing", errors.New("model gpt-x does not exist"), ErrorTypeModel, false},
		{"endpoint missing", errors.New("404 page not found"), ErrorTypeEndpoint, false},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorTypeEndpoint, true},
		{"timeout", errors.New("context deadline exceeded"), ErrorTypeEndpoint, true},
		{"rate limited", errors.New("429 Too Many Requests"), ErrorTypeUnknown, true},
		{"server error", errors.New("500 Internal Server Error"), ErrorTypeEndpoint, true},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyError(tt.err, "m", "e")
			require.NotNil(t, classified)
			assert.Equal(t, tt.wantType, classified.Type)
			assert.Equal(t, tt.retryable, classified.Retryable)
		})
	}
}

func TestClassifyErrorPreservesExisting(t *testing.T) {
	original := &Error{Type: ErrorTypeAuth, Message: "authentication failed", Retryable: false}
	wrapped := fmt.Errorf("request: %w", original)
	assert.Same(t, original, classifyError(wrapped, "m", "e"))
}

func TestIsRetryable(t *testing.T) {
	retryable := classifyError(errors.New("429 rate limit"), "m", "e")
	assert.True(t, IsRetryable(retryable))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", retryable)))

	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestErrorString(t *testing.T) {
	err := &Error{
		Type:    ErrorTypeModel,
		Message: "model not found",
		Model:   "gpt-test",
		Cause:   errors.New("boom"),
	}
	msg := err.Error()
	assert.Contains(t, msg, "model not found")
	assert.Contains(t, msg, "gpt-test")
	assert.Contains(t, msg, "boom")
}
