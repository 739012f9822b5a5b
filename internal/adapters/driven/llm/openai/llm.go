// Package openai talks to the chat completions API of OpenAI and of
// compatible hosts such as Groq.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/llm/apiclient"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the adapter. Only APIKey is required.
type LLMConfig struct {
	APIKey string

	// BaseURL selects the host. Use GroqBaseURL for Groq.
	BaseURL string

	Model string

	// Provider labels errors, e.g. "groq". Defaults to "openai".
	Provider string

	Timeout time.Duration
}

// LLMService implements driven.LLMService over an OpenAI-compatible API.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService fills in defaults and builds the adapter.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	header := http.Header{"Authorization": {"Bearer " + cfg.APIKey}}
	return &LLMService{
		api:   apiclient.New(cfg.Provider, cfg.BaseURL, cfg.Timeout, header),
		model: cfg.Model,
	}, nil
}

func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := completionRequest{
		Model:       s.model,
		Messages:    make([]message, 0, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, message{Role: m.Role, Content: m.Content})
	}

	var resp completionResponse
	if err := s.api.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		if resp.Error != nil {
			return "", apiclient.WithMessage(err, resp.Error.Message)
		}
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%s error: %s", s.api.Provider(), resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned", s.api.Provider())
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models")
}

func (s *LLMService) Close() error {
	return nil
}
