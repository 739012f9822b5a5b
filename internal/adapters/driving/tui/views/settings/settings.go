// Package settings provides the read-only settings view for the TUI.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

// ErrNoSettingsService is returned when the settings service is not provided.
var ErrNoSettingsService = errors.New("settings: service not configured")

// keyValidate pings the configured LLM provider.
const keyValidate = "v"

// View lists resolved configuration with the source of each value.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	settingsService driving.SettingsService
	ctx             context.Context

	entries    []driving.SettingEntry
	err        error
	validation string
	validating bool

	width  int
	height int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, km *keymap.KeyMap, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:          s,
		keymap:          km,
		settingsService: settingsService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for validation calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the entries.
func (v *View) Init() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		entries, err := svc.Entries()
		return messages.SettingsLoaded{Entries: entries, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.SettingsLoaded:
		v.entries = msg.Entries
		v.err = msg.Err

	case messages.LLMValidated:
		v.validating = false
		if msg.Err != nil {
			v.validation = "LLM check failed: " + msg.Err.Error()
		} else {
			v.validation = "LLM provider reachable"
		}

	case tea.KeyMsg:
		keyStr := msg.String()
		switch {
		case keymap.Matches(keyStr, v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case keymap.Matches(keyStr, v.keymap.Refresh):
			return v, v.Init()
		case keyStr == keyValidate:
			return v, v.validate()
		}
	}
	return v, nil
}

func (v *View) validate() tea.Cmd {
	if v.settingsService == nil || v.validating {
		return nil
	}
	v.validating = true
	v.validation = "Checking LLM provider..."
	svc := v.settingsService
	ctx := v.ctx
	return func() tea.Msg {
		return messages.LLMValidated{Err: svc.ValidateLLMConfig(ctx)}
	}
}

// View renders the settings table.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	for _, e := range v.entries {
		value := e.DisplayValue()
		if value == "" {
			value = v.styles.Muted.Render("(not set)")
		}
		source := v.styles.Muted.Render("[" + e.Source + "]")
		fmt.Fprintf(&b, "  %-28s %s %s\n", e.Key, value, source)
	}

	if v.validation != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render(v.validation))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[v] Check LLM  [r] Refresh  [esc] Back"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Change values with 'urbanbot config set' or environment variables."))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Entries returns the loaded entries.
func (v *View) Entries() []driving.SettingEntry {
	return v.entries
}
