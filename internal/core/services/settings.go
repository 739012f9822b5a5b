package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Setting sources, in increasing precedence.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

// settingDef binds one config key and/or environment variable to a field.
type settingDef struct {
	key  string
	env  string
	kind settingKind

	// envOnly settings are never read from or written to the config file.
	envOnly bool
	secret  bool

	apply func(s *domain.Settings, v string) error
	show  func(s domain.Settings) string
}

// LookupEnvFunc reads an environment variable.
type LookupEnvFunc func(key string) (string, bool)

// SettingsService resolves settings from defaults, the config file and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   LookupEnvFunc
	defs        []settingDef
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
		defs:        settingDefs(),
	}
}

// SetLookupEnv replaces the environment reader. Useful for testing.
func (s *SettingsService) SetLookupEnv(fn LookupEnvFunc) {
	s.lookupEnv = fn
}

// Get merges defaults, the config file and environment variables.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings, _, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Set stores a non-secret tuning value in the config file.
func (s *SettingsService) Set(key, value string) error {
	def, ok := s.lookupDef(key)
	if !ok || def.envOnly {
		return fmt.Errorf("%w: unknown or read-only setting %q", domain.ErrInvalidInput, key)
	}

	scratch := domain.DefaultSettings()
	if err := def.apply(&scratch, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	typed, err := typedValue(def.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Entries lists every resolved setting with its source.
// Secret values are reported but flagged so callers can mask them.
func (s *SettingsService) Entries() ([]driving.SettingEntry, error) {
	settings, sources, err := s.resolve()
	if err != nil {
		return nil, err
	}

	entries := make([]driving.SettingEntry, 0, len(s.defs)+1)
	for _, def := range s.defs {
		name := def.key
		if name == "" {
			name = def.env
		}
		entries = append(entries, driving.SettingEntry{
			Key:    name,
			Value:  def.show(*settings),
			Source: sources[name],
			Secret: def.secret,
		})
	}

	keyEnv := settings.LLM.Provider.APIKeyEnv()
	if keyEnv != "" {
		entries = append(entries, driving.SettingEntry{
			Key:    keyEnv,
			Value:  settings.LLM.APIKey,
			Source: sources[keyEnv],
			Secret: true,
		})
	}
	return entries, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

func (s *SettingsService) resolve() (*domain.Settings, map[string]string, error) {
	settings := domain.DefaultSettings()
	settings.LLM.Model = ""
	sources := make(map[string]string, len(s.defs)+1)

	for _, def := range s.defs {
		name := def.key
		if name == "" {
			name = def.env
		}
		sources[name] = SourceDefault

		if !def.envOnly && def.key != "" && s.configStore != nil {
			if raw, ok := s.fileValue(def); ok {
				if err := def.apply(&settings, raw); err != nil {
					return nil, nil, fmt.Errorf("%w: config %s: %w", domain.ErrInvalidInput, def.key, err)
				}
				sources[name] = SourceFile
			}
		}

		if def.env != "" {
			if raw, ok := s.env(def.env); ok {
				if err := def.apply(&settings, raw); err != nil {
					return nil, nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, def.env, err)
				}
				sources[name] = SourceEnv
			}
		}
	}

	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if keyEnv := settings.LLM.Provider.APIKeyEnv(); keyEnv != "" {
		sources[keyEnv] = SourceDefault
		if key, ok := s.env(keyEnv); ok {
			settings.LLM.APIKey = key
			sources[keyEnv] = SourceEnv
		}
	}

	return &settings, sources, nil
}

// env returns a non-empty environment value.
func (s *SettingsService) env(name string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (s *SettingsService) fileValue(def settingDef) (string, bool) {
	raw, ok := s.configStore.Get(def.key)
	if !ok || raw == nil {
		return "", false
	}
	if def.kind == kindList {
		return strings.Join(s.configStore.GetStringSlice(def.key), ","), true
	}
	return fmt.Sprint(raw), true
}

func (s *SettingsService) lookupDef(key string) (settingDef, bool) {
	for _, def := range s.defs {
		if def.key != "" && def.key == key {
			return def, true
		}
	}
	return settingDef{}, false
}

func typedValue(kind settingKind, v string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(v)
	case kindFloat:
		return strconv.ParseFloat(v, 64)
	case kindBool:
		return strconv.ParseBool(v)
	case kindList:
		return splitList(v), nil
	default:
		return v, nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", v)
	}
	return n, nil
}

func parseDuration(v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive: %q", v)
	}
	return d, nil
}

func stringDef(key, env string, secret bool, set func(*domain.Settings, string), get func(domain.Settings) string) settingDef {
	return settingDef{
		key: key, env: env, kind: kindString, secret: secret, envOnly: secret,
		apply: func(s *domain.Settings, v string) error { set(s, v); return nil },
		show:  get,
	}
}

func intDef(key, env string, set func(*domain.Settings, int), get func(domain.Settings) int) settingDef {
	return settingDef{
		key: key, env: env, kind: kindInt,
		apply: func(s *domain.Settings, v string) error {
			n, err := parseInt(v)
			if err != nil {
				return err
			}
			set(s, n)
			return nil
		},
		show: func(s domain.Settings) string { return strconv.Itoa(get(s)) },
	}
}

func durationDef(key string, set func(*domain.Settings, time.Duration), get func(domain.Settings) time.Duration) settingDef {
	return settingDef{
		key: key, kind: kindDuration,
		apply: func(s *domain.Settings, v string) error {
			d, err := parseDuration(v)
			if err != nil {
				return err
			}
			set(s, d)
			return nil
		},
		show: func(s domain.Settings) string { return get(s).String() },
	}
}

func keywordDef(topic domain.Topic) settingDef {
	return settingDef{
		key: "keywords." + topic.String(), kind: kindList,
		apply: func(s *domain.Settings, v string) error {
			if s.Assistant.ExtraKeywords == nil {
				s.Assistant.ExtraKeywords = make(map[domain.Topic][]string)
			}
			s.Assistant.ExtraKeywords[topic] = splitList(v)
			return nil
		},
		show: func(s domain.Settings) string {
			return strings.Join(s.Assistant.ExtraKeywords[topic], ",")
		},
	}
}

//nolint:gosec // G101: These are config key names, not actual credentials.
func settingDefs() []settingDef {
	defs := []settingDef{
		{
			key: "database.driver", env: "DB_DRIVER", kind: kindString,
			apply: func(s *domain.Settings, v string) error {
				d := domain.StoreDriver(strings.ToLower(v))
				if !d.IsValid() {
					return fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, v)
				}
				s.Database.Driver = d
				return nil
			},
			show: func(s domain.Settings) string { return s.Database.Driver.String() },
		},
		stringDef("database.host", "DB_HOST", false,
			func(s *domain.Settings, v string) { s.Database.Host = v },
			func(s domain.Settings) string { return s.Database.Host }),
		intDef("database.port", "DB_PORT",
			func(s *domain.Settings, v int) { s.Database.Port = v },
			func(s domain.Settings) int { return s.Database.Port }),
		stringDef("database.user", "DB_USER", false,
			func(s *domain.Settings, v string) { s.Database.User = v },
			func(s domain.Settings) string { return s.Database.User }),
		stringDef("", "DB_PASSWORD", true,
			func(s *domain.Settings, v string) { s.Database.Password = v },
			func(s domain.Settings) string { return s.Database.Password }),
		stringDef("database.name", "DB_NAME", false,
			func(s *domain.Settings, v string) { s.Database.Name = v },
			func(s domain.Settings) string { return s.Database.Name }),
		stringDef("database.path", "DB_PATH", false,
			func(s *domain.Settings, v string) { s.Database.Path = v },
			func(s domain.Settings) string { return s.Database.Path }),
		{
			key: "llm.provider", env: "LLM_PROVIDER", kind: kindString,
			apply: func(s *domain.Settings, v string) error {
				p := domain.AIProvider(strings.ToLower(v))
				if !p.IsValid() {
					return fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, v)
				}
				s.LLM.Provider = p
				return nil
			},
			show: func(s domain.Settings) string { return s.LLM.Provider.String() },
		},
		stringDef("llm.model", "LLM_MODEL", false,
			func(s *domain.Settings, v string) { s.LLM.Model = v },
			func(s domain.Settings) string { return s.LLM.Model }),
		stringDef("llm.base_url", "LLM_BASE_URL", false,
			func(s *domain.Settings, v string) { s.LLM.BaseURL = v },
			func(s domain.Settings) string { return s.LLM.BaseURL }),
		{
			key: "llm.temperature", kind: kindFloat,
			apply: func(s *domain.Settings, v string) error {
				f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if err != nil || f < 0 || f > 2 {
					return fmt.Errorf("temperature must be between 0 and 2: %q", v)
				}
				s.LLM.Temperature = f
				return nil
			},
			show: func(s domain.Settings) string { return strconv.FormatFloat(s.LLM.Temperature, 'f', -1, 64) },
		},
		intDef("llm.requests_per_minute", "",
			func(s *domain.Settings, v int) { s.LLM.RequestsPerMinute = v },
			func(s domain.Settings) int { return s.LLM.RequestsPerMinute }),
		stringDef("email.host", "SMTP_HOST", false,
			func(s *domain.Settings, v string) { s.Email.Host = v },
			func(s domain.Settings) string { return s.Email.Host }),
		intDef("email.port", "SMTP_PORT",
			func(s *domain.Settings, v int) { s.Email.Port = v },
			func(s domain.Settings) int { return s.Email.Port }),
		stringDef("email.user", "EMAIL_USER", false,
			func(s *domain.Settings, v string) { s.Email.User = v },
			func(s domain.Settings) string { return s.Email.User }),
		stringDef("", "EMAIL_PASSWORD", true,
			func(s *domain.Settings, v string) { s.Email.Password = v },
			func(s domain.Settings) string { return s.Email.Password }),
		stringDef("email.receiver", "EMAIL_RECEIVER", false,
			func(s *domain.Settings, v string) { s.Email.Receiver = v },
			func(s domain.Settings) string { return s.Email.Receiver }),
		{
			key: "email.auth", env: "EMAIL_AUTH", kind: kindString,
			apply: func(s *domain.Settings, v string) error {
				a := domain.EmailAuth(strings.ToLower(v))
				if a != domain.EmailAuthPlain && a != domain.EmailAuthXOAuth2 {
					return fmt.Errorf("%w: email auth %q", domain.ErrUnsupportedProvider, v)
				}
				s.Email.Auth = a
				return nil
			},
			show: func(s domain.Settings) string { return string(s.Email.Auth) },
		},
		stringDef("email.oauth_client_id", "EMAIL_OAUTH_CLIENT_ID", false,
			func(s *domain.Settings, v string) { s.Email.OAuthClientID = v },
			func(s domain.Settings) string { return s.Email.OAuthClientID }),
		stringDef("", "EMAIL_OAUTH_CLIENT_SECRET", true,
			func(s *domain.Settings, v string) { s.Email.OAuthClientSecret = v },
			func(s domain.Settings) string { return s.Email.OAuthClientSecret }),
		stringDef("", "EMAIL_OAUTH_REFRESH_TOKEN", true,
			func(s *domain.Settings, v string) { s.Email.OAuthRefreshToken = v },
			func(s domain.Settings) string { return s.Email.OAuthRefreshToken }),
		durationDef("timeouts.retrieval",
			func(s *domain.Settings, d time.Duration) { s.Timeouts.Retrieval = d },
			func(s domain.Settings) time.Duration { return s.Timeouts.Retrieval }),
		durationDef("timeouts.generation",
			func(s *domain.Settings, d time.Duration) { s.Timeouts.Generation = d },
			func(s domain.Settings) time.Duration { return s.Timeouts.Generation }),
		durationDef("timeouts.dispatch",
			func(s *domain.Settings, d time.Duration) { s.Timeouts.Dispatch = d },
			func(s domain.Settings) time.Duration { return s.Timeouts.Dispatch }),
		durationDef("dashboard.cache_ttl",
			func(s *domain.Settings, d time.Duration) { s.Dashboard.CacheTTL = d },
			func(s domain.Settings) time.Duration { return s.Dashboard.CacheTTL }),
		{
			key: "assistant.compose_general", kind: kindBool,
			apply: func(s *domain.Settings, v string) error {
				b, err := strconv.ParseBool(strings.TrimSpace(v))
				if err != nil {
					return fmt.Errorf("not a boolean: %q", v)
				}
				s.Assistant.ComposeGeneral = b
				return nil
			},
			show: func(s domain.Settings) string { return strconv.FormatBool(s.Assistant.ComposeGeneral) },
		},
	}

	for _, t := range domain.AllTopics() {
		if t.HasData() {
			defs = append(defs, keywordDef(t))
		}
	}
	return defs
}
