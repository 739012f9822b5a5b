package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// RateLimitedLLM throttles Chat calls with a token bucket. Ping and Close
// pass straight through.
type RateLimitedLLM struct {
	next    driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps next so that at most requestsPerMinute chats start
// per minute. The bucket allows a single request burst.
func NewRateLimitedLLM(next driven.LLMService, requestsPerMinute int) *RateLimitedLLM {
	every := time.Minute / time.Duration(max(requestsPerMinute, 1))
	return &RateLimitedLLM{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Chat waits for a token, then delegates. A wait cut short by the context
// deadline is reported as ErrRateLimited.
func (r *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return r.next.Chat(ctx, messages, opts)
}

// ModelName returns the wrapped model name.
func (r *RateLimitedLLM) ModelName() string {
	return r.next.ModelName()
}

// Ping delegates without consuming a token.
func (r *RateLimitedLLM) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimitedLLM) Close() error {
	return r.next.Close()
}
