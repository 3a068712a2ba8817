package logging

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Pattern to match potential API keys in URLs or error strings.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key|token)=[A-Za-z0-9-_]{8,}`)

	// Pattern to match bearer tokens.
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_.]+`)
)

// New builds the root logger. Local and development environments get a
// human-readable console logger; everything else gets production JSON.
func New(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	switch env {
	case "local", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// SanitizeError sanitizes error messages that might contain credentials
// (hint provider errors can echo request URLs). Use before logging any
// error from an external call.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := apiKeyPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	return sanitized
}
