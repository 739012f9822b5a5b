// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EventStore: Read-only access to the city event tables (MySQL or SQLite)
//   - LLMService: Generative text completion (Groq, OpenAI, Anthropic, Gemini, Ollama)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Notifier: Report delivery. Without it, delivery requests report failure.
//   - PromptStore: User-editable prompt templates. Without it, built-in templates are used.
//   - Observer: Metrics sink. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
