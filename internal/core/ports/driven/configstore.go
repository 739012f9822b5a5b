package driven

// ConfigStore holds the user's persisted setting overrides, keyed by the
// dotted setting name ("llm.model", "keywords.traffic").
//
// Values come back as decoded: strings, int64, float64, bool or []any for
// TOML arrays. The settings service owns conversion to typed fields.
type ConfigStore interface {
	// Get returns the stored value and whether the key is present.
	Get(key string) (any, bool)

	// GetStringSlice reads a list setting; nil when absent or not a list.
	GetStringSlice(key string) []string

	// Set stores value under key and writes the file before returning.
	Set(key string, value any) error
}
