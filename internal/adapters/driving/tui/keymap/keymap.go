// Package keymap holds the TUI key bindings shared by every view.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap groups the bindings by purpose. Views read the fields directly and
// pass the help slices to the status bar.
type KeyMap struct {
	Quit, Help, Back key.Binding

	// Chat view.
	Send, ScrollUp, ScrollDown, Clear key.Binding

	// Menu and settings lists.
	Up, Down, Select key.Binding

	// Refresh re-runs the dashboard summary or re-reads settings.
	Refresh key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Send:       bind("enter", "send", "enter"),
		ScrollUp:   bind("pgup", "scroll up", "pgup"),
		ScrollDown: bind("pgdn", "scroll down", "pgdown"),
		Clear:      bind("ctrl+l", "clear", "ctrl+l"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter"),

		Refresh: bind("r", "refresh", "r"),
	}
}

// ShortHelp is the footer shown outside the chat view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ChatHelp is the chat view footer. Quit is left out because q is typed text there.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.ScrollUp, k.Clear, k.Back}
}

// FullHelp lists every binding in columns for the help overlay.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Send, k.ScrollUp, k.ScrollDown, k.Clear},
		{k.Refresh, k.Back, k.Help, k.Quit},
	}
}

// Matches reports whether keyStr, as produced by tea.KeyMsg.String, is one
// of binding's keys. Disabled bindings still match.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
