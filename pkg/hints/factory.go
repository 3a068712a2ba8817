package hints

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
)

// NewClient creates a hint client for the configured provider.
// Use the returned Client interface for dependency injection of mocks.
func NewClient(cfg config.HintsConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown hint provider %q", cfg.Provider)
	}
}
