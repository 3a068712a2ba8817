package hints

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies hint-provider failures.
type ErrorType string

const (
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeModel    ErrorType = "model"
	ErrorTypeEndpoint ErrorType = "endpoint"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents a structured hint-provider error with classification.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
	Model     string
	Endpoint  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// classifyError categorizes a provider error into a structured Error.
// Both SDKs surface failures as strings, so classification is textual.
func classifyError(err error, model, endpoint string) *Error {
	if err == nil {
		return nil
	}

	var hintErr *Error
	if errors.As(err, &hintErr) {
		return hintErr
	}

	newErr := func(errType ErrorType, message string, retryable bool) *Error {
		return &Error{
			Type:      errType,
			Message:   message,
			Retryable: retryable,
			Cause:     err,
			Model:     model,
			Endpoint:  endpoint,
		}
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key"):
		return newErr(ErrorTypeAuth, "authentication failed", false)
	case strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")):
		return newErr(ErrorTypeModel, "model not found", false)
	case strings.Contains(errStr, "404"):
		return newErr(ErrorTypeEndpoint, "endpoint not found", false)
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return newErr(ErrorTypeEndpoint, "connection failed", true)
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return newErr(ErrorTypeEndpoint, "request timeout", true)
	case strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit"):
		return newErr(ErrorTypeUnknown, "rate limited", true)
	case strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504"):
		return newErr(ErrorTypeEndpoint, "server error", true)
	}

	return newErr(ErrorTypeUnknown, "hint provider error", false)
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var hintErr *Error
	if errors.As(err, &hintErr) {
		return hintErr.Retryable
	}
	return false
}
