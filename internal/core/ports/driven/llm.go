package driven

import "context"

// LLMService turns a chat transcript into one completion. Adapters exist
// for Groq (OpenAI-compatible), Anthropic, Gemini and Ollama.
type LLMService interface {
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName is the model the adapter was built for, as configured.
	ModelName() string

	// Ping makes the cheapest request the provider allows.
	Ping(ctx context.Context) error

	Close() error
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the transcript.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions are per-call generation settings.
type ChatOptions struct {
	// MaxTokens <= 0 leaves the limit to the adapter.
	MaxTokens   int
	Temperature float64
}
