// Package menu is the landing screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/styles"
)

// Entry is one destination on the menu. A zero Target with Exit set
// leaves the program.
type Entry struct {
	Label  string
	Hint   string
	Hotkey string
	Target messages.ViewType
	Exit   bool
}

// Entries lists the menu destinations in display order.
func Entries() []Entry {
	return []Entry{
		{Label: "Ask UrbanBot", Hint: "traffic, accidents, air quality, crowds", Hotkey: "c", Target: messages.ViewChat},
		{Label: "City dashboard", Hint: "KPIs and per-city breakdowns", Hotkey: "d", Target: messages.ViewSummary},
		{Label: "Configuration", Hint: "resolved settings and provider check", Hotkey: "s", Target: messages.ViewSettings},
		{Label: "Keys", Hint: "keyboard reference", Hotkey: "?", Target: messages.ViewHelp},
		{Label: "Exit", Hotkey: "q", Exit: true},
	}
}

// sampleQuestions rotate under the menu as a starting point.
var sampleQuestions = []string{
	"How many accidents were reported today?",
	"Which city has the worst AQI?",
	"Show traffic congestion and email the report",
}

type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	entries []Entry
	cursor  int
	width   int
	height  int
	ready   bool
}

func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keys:    km,
		entries: Entries(),
		width:   80,
		height:  24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keys.Up):
		v.move(-1)
		return nil
	case keymap.Matches(k, v.keys.Down):
		v.move(1)
		return nil
	case keymap.Matches(k, v.keys.Select):
		return v.activate(v.entries[v.cursor])
	}
	for i, e := range v.entries {
		if e.Hotkey == k {
			v.cursor = i
			return v.activate(e)
		}
	}
	return nil
}

// move wraps around at both ends.
func (v *View) move(delta int) {
	n := len(v.entries)
	v.cursor = ((v.cursor+delta)%n + n) % n
}

func (v *View) activate(e Entry) tea.Cmd {
	if e.Exit {
		return tea.Quit
	}
	target := e.Target
	return func() tea.Msg { return messages.ViewChanged{View: target} }
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("UrbanBot"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render("smart city assistant"))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		label := fmt.Sprintf("[%s] %s", e.Hotkey, e.Label)
		if i == v.cursor {
			b.WriteString("▸ " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if e.Hint != "" && v.width >= 60 {
			b.WriteString("  " + v.styles.Muted.Render(e.Hint))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Try asking"))
	b.WriteByte('\n')
	for _, q := range sampleQuestions {
		b.WriteString(v.styles.Muted.Render("  " + q))
		b.WriteByte('\n')
	}
	return b.String()
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the highlighted entry index.
func (v *View) Selected() int {
	return v.cursor
}
