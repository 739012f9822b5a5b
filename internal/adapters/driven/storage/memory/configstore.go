package memory

import (
	"github.com/custodia-labs/urbanbot/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in process memory so tests never touch
// the user config file.
type ConfigStore struct {
	kv.Map
}

// NewConfigStore returns an empty store, optionally seeded with values.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{}
	for _, m := range seed {
		for k, v := range m {
			s.Put(k, v)
		}
	}
	return s
}

func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return nil
}

// Save and Load have nothing to persist.
func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
