package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const configFile = "config.toml"

// ConfigStore persists settings as TOML. Keys are dotted ("llm.model")
// in memory and become tables on disk.
type ConfigStore struct {
	kv.Map

	// writeMu serialises writes to the file.
	writeMu sync.Mutex
	path    string
}

// DefaultConfigDir returns ~/.urbanbot.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".urbanbot"), nil
}

// NewConfigStore opens configDir/config.toml, creating the directory.
// An empty configDir means DefaultConfigDir. A missing file is not an error.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, configFile)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores value and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return s.Save()
}

// Save writes through a temporary file so a crash never leaves a
// truncated config behind.
func (s *ConfigStore) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := toml.Marshal(nestMap(s.Snapshot()))
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), configFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load replaces the in-memory values with the file content.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.Replace(flattenMap(doc, ""))
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

// flattenMap turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(table, k) {
				out[fk] = fv
			}
			continue
		}
		out[k] = v
	}
	return out
}

// nestMap reverses flattenMap. Keys are placed in sorted order so a
// parent value always lands before its would-be children; a child that
// finds a value in its path stays in dotted form.
func nestMap(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		path := strings.Split(key, ".")
		table, ok := descend(root, path[:len(path)-1])
		if !ok {
			root[key] = flat[key]
			continue
		}
		table[path[len(path)-1]] = flat[key]
	}
	return root
}

// descend walks (and creates) tables along path. It reports false when a
// segment already holds a plain value.
func descend(root map[string]any, path []string) (map[string]any, bool) {
	node := root
	for _, seg := range path {
		next, exists := node[seg]
		if !exists {
			t := make(map[string]any)
			node[seg] = t
			node = t
			continue
		}
		t, ok := next.(map[string]any)
		if !ok {
			return nil, false
		}
		node = t
	}
	return node, true
}
