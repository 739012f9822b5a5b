package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/urbanbot/internal/logger"
)

const promptChangeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch clears the cache whenever a prompt file changes and calls
// onChange, if set, with the prompt name. It returns nil once ctx is done.
func (s *PromptStore) Watch(ctx context.Context, onChange func(name string)) error {
	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		return s.seedErr
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	logger.Debug("Watching prompts in %s", s.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, isPrompt := strings.CutSuffix(filepath.Base(ev.Name), promptExt)
			if !isPrompt || ev.Op&promptChangeOps == 0 {
				continue
			}
			s.Reload()
			logger.Info("Prompt %q changed, cache cleared", name)
			if onChange != nil {
				onChange(name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}
