package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func viewFrom(t *testing.T, cmd tea.Cmd) messages.ViewType {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.ViewChanged)
	require.True(t, ok, "expected ViewChanged")
	return msg.View
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v.styles)
	require.NotNil(t, v.keys)
	assert.Len(t, v.entries, len(Entries()))
	assert.Equal(t, 0, v.Selected())
	assert.Nil(t, v.Init())
}

func TestEntries_HotkeysAreUnique(t *testing.T) {
	seen := map[string]string{}
	for _, e := range Entries() {
		prev, dup := seen[e.Hotkey]
		assert.False(t, dup, "%q shared by %s and %s", e.Hotkey, prev, e.Label)
		seen[e.Hotkey] = e.Label
	}
}

func TestView_NavigationWraps(t *testing.T) {
	v := NewView(nil, nil)
	last := len(v.entries) - 1

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, last, v.Selected())

	v.Update(runeKey('j'))
	assert.Equal(t, 0, v.Selected())

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(runeKey('k'))
	assert.Equal(t, 0, v.Selected())
}

func TestView_EnterOpensHighlightedEntry(t *testing.T) {
	v := NewView(nil, nil)
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewSummary, viewFrom(t, cmd))
}

func TestView_Hotkeys(t *testing.T) {
	tests := []struct {
		key  rune
		want messages.ViewType
	}{
		{'c', messages.ViewChat},
		{'d', messages.ViewSummary},
		{'s', messages.ViewSettings},
		{'?', messages.ViewHelp},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			v := NewView(nil, nil)

			_, cmd := v.Update(runeKey(tt.key))

			assert.Equal(t, tt.want, viewFrom(t, cmd))
		})
	}
}

func TestView_ExitQuits(t *testing.T) {
	v := NewView(nil, nil)

	_, cmd := v.Update(runeKey('q'))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, len(v.entries)-1, v.Selected())
}

func TestView_UnknownKeyIgnored(t *testing.T) {
	v := NewView(nil, nil)

	_, cmd := v.Update(runeKey('z'))

	assert.Nil(t, cmd)
	assert.Equal(t, 0, v.Selected())
}

func TestView_Render(t *testing.T) {
	v := NewView(nil, nil)
	assert.Equal(t, "Initialising...", v.View())

	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := v.View()

	assert.Contains(t, out, "UrbanBot")
	assert.Contains(t, out, "[c] Ask UrbanBot")
	assert.Contains(t, out, "KPIs and per-city breakdowns")
	assert.Contains(t, out, "Which city has the worst AQI?")
}

func TestView_NarrowHidesHints(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(40, 20)

	assert.NotContains(t, v.View(), "keyboard reference")
}
