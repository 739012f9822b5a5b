package domain

import (
	"fmt"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies a generative-text service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGroq, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && p != AIProviderOllama
}

// APIKeyEnv returns the environment variable holding the provider's key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGroq:
		return "Groq (cloud, OpenAI-compatible)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
		AIProviderOllama,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.1-8b-instant",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderOllama:    "llama3.2",
	}
}

// StoreDriver selects the event store backend.
type StoreDriver string

// Available store drivers.
const (
	// StoreDriverMySQL is the production event store.
	StoreDriverMySQL StoreDriver = "mysql"

	// StoreDriverPostgres reads a PostgreSQL replica of the event tables.
	StoreDriverPostgres StoreDriver = "postgres"

	// StoreDriverSQLite is a local file store for development and tests.
	StoreDriverSQLite StoreDriver = "sqlite"
)

// IsValid returns true if the driver is recognised.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreDriverMySQL, StoreDriverPostgres, StoreDriverSQLite:
		return true
	default:
		return false
	}
}

// IsNetwork reports whether the driver connects to a database server.
func (d StoreDriver) IsNetwork() bool {
	return d == StoreDriverMySQL || d == StoreDriverPostgres
}

// String returns the string representation.
func (d StoreDriver) String() string {
	return string(d)
}

// DatabaseSettings holds event store connection configuration.
type DatabaseSettings struct {
	Driver   StoreDriver
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Path is the SQLite file (sqlite driver only).
	Path string
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the provider API key.
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// RequestsPerMinute bounds outbound calls. Zero disables limiting.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EmailAuth selects the SMTP authentication mechanism.
type EmailAuth string

// Available SMTP auth mechanisms.
const (
	EmailAuthPlain   EmailAuth = "plain"
	EmailAuthXOAuth2 EmailAuth = "xoauth2"
)

// EmailSettings holds notification channel configuration.
type EmailSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Receiver string
	Auth     EmailAuth

	// OAuth2 credentials, used with EmailAuthXOAuth2.
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRefreshToken string
}

// IsConfigured returns true if a report can be e-mailed.
func (e EmailSettings) IsConfigured() bool {
	if e.Host == "" || e.User == "" || e.Receiver == "" {
		return false
	}
	if e.Auth == EmailAuthXOAuth2 {
		return e.OAuthClientID != "" && e.OAuthClientSecret != "" && e.OAuthRefreshToken != ""
	}
	return e.Password != ""
}

// started reports whether any account or recipient value is set. Host,
// port and auth have defaults, so they do not count.
func (e EmailSettings) started() bool {
	return e.User != "" || e.Password != "" || e.Receiver != "" ||
		e.OAuthClientID != "" || e.OAuthClientSecret != "" || e.OAuthRefreshToken != ""
}

// missingKeys lists the variables still needed before reports can be sent.
func (e EmailSettings) missingKeys() []string {
	var missing []string
	if e.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if e.User == "" {
		missing = append(missing, "EMAIL_USER")
	}
	if e.Receiver == "" {
		missing = append(missing, "EMAIL_RECEIVER")
	}
	if e.Auth == EmailAuthXOAuth2 {
		if e.OAuthClientID == "" {
			missing = append(missing, "EMAIL_OAUTH_CLIENT_ID")
		}
		if e.OAuthClientSecret == "" {
			missing = append(missing, "EMAIL_OAUTH_CLIENT_SECRET")
		}
		if e.OAuthRefreshToken == "" {
			missing = append(missing, "EMAIL_OAUTH_REFRESH_TOKEN")
		}
	} else if e.Password == "" {
		missing = append(missing, "EMAIL_PASSWORD")
	}
	return missing
}

// TimeoutSettings bounds each blocking step of a request.
type TimeoutSettings struct {
	Retrieval  time.Duration
	Generation time.Duration
	Dispatch   time.Duration
}

// DashboardSettings tunes the dashboard summary.
type DashboardSettings struct {
	// CacheTTL is how long counter results are reused before the store is queried again.
	CacheTTL time.Duration
}

// AssistantSettings holds orchestration policy.
type AssistantSettings struct {
	// ComposeGeneral formats General answers as reports. Off by default.
	ComposeGeneral bool

	// ExtraKeywords extends the built-in topic rules.
	ExtraKeywords map[Topic][]string
}

// Settings holds all process-wide configuration, read once at startup.
type Settings struct {
	Database  DatabaseSettings
	LLM       LLMSettings
	Email     EmailSettings
	Timeouts  TimeoutSettings
	Dashboard DashboardSettings
	Assistant AssistantSettings
}

// DefaultSettings returns settings with sensible defaults.
// Credentials are left empty.
func DefaultSettings() Settings {
	return Settings{
		Database: DatabaseSettings{
			Driver: StoreDriverMySQL,
			Host:   "localhost",
			Port:   3306,
		},
		LLM: LLMSettings{
			Provider:          AIProviderGroq,
			Model:             DefaultLLMModels()[AIProviderGroq],
			Temperature:       0.3,
			RequestsPerMinute: 30,
		},
		Email: EmailSettings{
			Host: "smtp.gmail.com",
			Port: 587,
			Auth: EmailAuthPlain,
		},
		Timeouts: TimeoutSettings{
			Retrieval:  5 * time.Second,
			Generation: 30 * time.Second,
			Dispatch:   15 * time.Second,
		},
		Dashboard: DashboardSettings{
			CacheTTL: 30 * time.Second,
		},
	}
}

// Validate reports every missing required key at once.
// E-mail is optional, but once any account value is set the rest are
// required; left fully unset, delivery requests degrade to a failure notice.
func (s Settings) Validate() error {
	var missing []string

	switch s.Database.Driver {
	case StoreDriverMySQL, StoreDriverPostgres:
		if s.Database.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if s.Database.User == "" {
			missing = append(missing, "DB_USER")
		}
		if s.Database.Name == "" {
			missing = append(missing, "DB_NAME")
		}
	case StoreDriverSQLite:
		if s.Database.Path == "" {
			missing = append(missing, "DB_PATH")
		}
	default:
		return fmt.Errorf("%w: store driver %q", ErrUnsupportedProvider, s.Database.Driver)
	}

	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: llm provider %q", ErrUnsupportedProvider, s.LLM.Provider)
	}
	if s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey == "" {
		missing = append(missing, s.LLM.Provider.APIKeyEnv())
	}

	if s.Email.started() && !s.Email.IsConfigured() {
		missing = append(missing, s.Email.missingKeys()...)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}
