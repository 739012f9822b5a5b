// Package anthropic adapts the Anthropic messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/llm/apiclient"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-haiku-latest"
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens applies when the caller sets no limit; the API requires one.
	DefaultMaxTokens = 1024

	apiVersion = "2023-06-01"
)

// ErrEmptyContent is returned when a reply carries no text blocks.
var ErrEmptyContent = errors.New("anthropic: no response content returned")

// Config configures the adapter. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService implements driven.LLMService for Anthropic.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string  `json:"model"`
	System      string  `json:"system,omitempty"`
	Messages    []turn  `json:"messages"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	header := http.Header{
		"X-Api-Key":         {cfg.APIKey},
		"Anthropic-Version": {apiVersion},
	}
	return &LLMService{
		api:   apiclient.New("anthropic", cfg.BaseURL, cfg.Timeout, header),
		model: cfg.Model,
	}, nil
}

// Chat sends the conversation to /v1/messages. System messages move to
// the top-level system field; the API only accepts user and assistant turns.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := request{
		Model:       s.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}

	var system []string
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, turn{Role: m.Role, Content: m.Content})
	}
	req.System = strings.Join(system, "\n\n")

	var resp response
	if err := s.api.PostJSON(ctx, "/v1/messages", req, &resp); err != nil {
		if resp.Error != nil {
			return "", apiclient.WithMessage(err, resp.Error.Message)
		}
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", resp.Error.Message)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyContent
	}
	return text.String(), nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models to check the key.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/v1/models")
}

func (s *LLMService) Close() error {
	return nil
}
