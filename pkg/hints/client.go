// Package hints integrates the LLM-based suggestion collaborator. Hints are
// an untrusted, best-effort ranking signal: the engine consumes only the
// suggested field-name pairs and never treats rationale text as ground
// truth.
package hints

import "context"

// Client is the minimal LLM surface the suggester needs.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Ensure implementations satisfy Client at compile time.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
