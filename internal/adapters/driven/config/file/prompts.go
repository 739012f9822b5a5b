package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults
var defaultFiles embed.FS

const promptExt = ".txt"

// PromptStore serves prompt templates from a user-editable directory,
// falling back to the built-in text. The directory is seeded with the
// built-in files on first use, never in the constructor.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	gen   uint64
	cache map[string]string
}

// NewPromptStore uses dir, or ~/.urbanbot/prompts when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// defaultPrompt returns the built-in text for name.
func defaultPrompt(name string) (string, bool) {
	data, err := defaultFiles.ReadFile(path.Join("defaults", name+promptExt))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Load returns the template called name. A missing or unreadable file
// yields the built-in text; a name with neither is an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	s.mu.RLock()
	text, ok := s.cache[name]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := s.read(name)
	if err != nil {
		fallback, ok := defaultPrompt(name)
		if !ok {
			return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(err, s.seedErr))
		}
		return fallback, nil
	}

	s.mu.Lock()
	if s.gen == gen {
		s.cache[name] = text
	}
	s.mu.Unlock()
	return text, nil
}

// Reload drops cached templates so the next Load reads the files again.
// A read that started before Reload is not cached.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.gen++
	clear(s.cache)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed copies every built-in file that the user has not created yet.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	s.seedErr = fs.WalkDir(defaultFiles, "defaults", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		target := filepath.Join(s.dir, d.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		data, err := defaultFiles.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return fmt.Errorf("create default prompt %s: %w", d.Name(), err)
		}
		return nil
	})
}
