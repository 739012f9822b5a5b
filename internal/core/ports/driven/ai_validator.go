package driven

import (
	"context"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error
}
