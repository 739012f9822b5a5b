package driving

import (
	"context"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// SettingEntry is one resolved configuration value for display.
type SettingEntry struct {
	Key    string
	Value  string
	Source string
	Secret bool
}

// DisplayValue returns the value with secrets masked to their first and last
// four characters.
func (e SettingEntry) DisplayValue() string {
	if !e.Secret || e.Value == "" {
		return e.Value
	}
	if len(e.Value) <= 8 {
		return "****"
	}
	return e.Value[:4] + "..." + e.Value[len(e.Value)-4:]
}

// SettingsService resolves application settings.
type SettingsService interface {
	// Get merges defaults, the config file and environment variables.
	// It does not validate; call domain.Settings.Validate.
	Get() (*domain.Settings, error)

	// Set stores a non-secret tuning value in the config file.
	Set(key, value string) error

	// Entries lists every resolved key with its source, for display.
	Entries() ([]SettingEntry, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig(ctx context.Context) error
}
