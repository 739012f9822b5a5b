// Package ai builds the configured LLM adapter and checks it can be reached.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/urbanbot/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/urbanbot/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/urbanbot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/urbanbot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

// pingTimeout bounds the reachability check made at startup and by
// `config validate`.
const pingTimeout = 5 * time.Second

const settingsHint = "Run 'urbanbot config show' to check settings"

type constructor func(ctx context.Context, s *domain.LLMSettings) (driven.LLMService, error)

var constructors = map[domain.AIProvider]constructor{
	domain.AIProviderGroq: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = openaillm.GroqBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:   s.APIKey,
			BaseURL:  baseURL,
			Model:    s.Model,
			Provider: string(domain.AIProviderGroq),
		})
	},
	domain.AIProviderOpenAI: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		return openaillm.NewLLMService(openaillm.LLMConfig{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderAnthropic: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderGemini: func(ctx context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		return geminillm.NewLLMService(ctx, geminillm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderOllama: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
}

// CreateLLMService builds the adapter for settings.Provider. Unconfigured
// settings give (nil, nil). A positive RequestsPerMinute adds a rate limiter.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	build, ok := constructors[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, settings.Provider)
	}
	svc, err := build(ctx, settings)
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerMinute > 0 {
		svc = NewRateLimitedLLM(svc, settings.RequestsPerMinute)
	}
	return svc, nil
}

// CreateAndValidateLLMService is CreateLLMService followed by a ping.
// Failures wrap domain.ErrLLMUnavailable; callers degrade to the
// generation failure notice.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, settingsHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, settingsHint)
	}
	return svc, nil
}

// ValidateLLMConfig builds a throwaway service for settings and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc)
}

func ping(ctx context.Context, svc driven.LLMService) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
