// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the UrbanBot config directory (~/.urbanbot).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates seeded from defaults/, hot-reloaded via fsnotify
package file
