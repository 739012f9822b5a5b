package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// Generation defaults.
const (
	DefaultSystemPrompt      = "You are a Smart City AI assistant."
	DefaultTemperature       = 0.3
	DefaultGenerationTimeout = 30 * time.Second
)

// GenerationService sends one prompt to the LLM under a fixed persona.
type GenerationService struct {
	llm         driven.LLMService
	temperature float64
	timeout     time.Duration
	promptStore driven.PromptStore
	observer    driven.Observer
}

// Ensure GenerationService can use custom prompts.
var _ driven.PromptStoreAware = (*GenerationService)(nil)

// NewGenerationService creates a new generation service.
// A non-positive timeout selects DefaultGenerationTimeout. A negative
// temperature selects DefaultTemperature.
func NewGenerationService(llm driven.LLMService, temperature float64, timeout time.Duration) *GenerationService {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	return &GenerationService{llm: llm, temperature: temperature, timeout: timeout}
}

// SetPromptStore sets the prompt store for loading the system persona.
func (g *GenerationService) SetPromptStore(store driven.PromptStore) {
	g.promptStore = store
}

// SetObserver sets the metrics sink.
func (g *GenerationService) SetObserver(o driven.Observer) {
	g.observer = o
}

// Generate sends [system persona, userContent] and returns the completion verbatim.
// Failures wrap domain.ErrGenerationFailed; deadline overruns wrap
// domain.ErrGenerationTimeout.
func (g *GenerationService) Generate(ctx context.Context, userContent string) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, domain.ErrLLMUnavailable)
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: g.systemPrompt()},
		{Role: driven.RoleUser, Content: userContent},
	}

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	logger.Debug("Generating with %s (temperature=%.2f, prompt=%d chars)",
		g.llm.ModelName(), g.temperature, len(userContent))

	start := time.Now()
	text, err := g.llm.Chat(genCtx, messages, driven.ChatOptions{Temperature: g.temperature})
	elapsed := time.Since(start)

	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded)):
		err = fmt.Errorf("%w after %s: %w", domain.ErrGenerationTimeout, g.timeout, err)
	case err != nil:
		if !errors.Is(err, domain.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}
	case strings.TrimSpace(text) == "":
		err = fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}

	if g.observer != nil {
		g.observer.ObserveGeneration(elapsed, err)
	}
	if err != nil {
		return "", err
	}

	logger.Debug("Generated %d chars in %s", len(text), elapsed)
	return text, nil
}

func (g *GenerationService) systemPrompt() string {
	if g.promptStore == nil {
		return DefaultSystemPrompt
	}
	p, err := g.promptStore.Load(driven.PromptSystem)
	if err != nil || strings.TrimSpace(p) == "" {
		return DefaultSystemPrompt
	}
	return strings.TrimSpace(p)
}
