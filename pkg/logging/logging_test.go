package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"local", "development", "production", "staging"} {
		logger, err := New(env)
		require.NoError(t, err, env)
		require.NotNil(t, logger, env)
	}
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "api key in query string",
			err:  errors.New("request failed: https://api.example.com/v1?api_key=sk1234567890abcdef"),
			want: "request failed: https://api.example.com/v1?api_key=" + RedactedText,
		},
		{
			name: "bearer token",
			err:  errors.New("401: Bearer sk-abc123.def456 rejected"),
			want: "401: Bearer " + RedactedText + " rejected",
		},
		{
			name: "clean error untouched",
			err:  errors.New("connection refused"),
			want: "connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeError(tt.err))
		})
	}
}
