// Package summary provides the dashboard view for the TUI.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

// ErrNoDashboard is returned when the dashboard service is not provided.
var ErrNoDashboard = errors.New("summary: dashboard not configured")

// maxCities bounds each breakdown list.
const maxCities = 10

// View renders dashboard KPIs and per-city breakdowns.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	dashboard driving.DashboardService
	ctx       context.Context

	summary *domain.Summary
	loading bool
	err     error

	width  int
	height int
}

// NewView creates a new summary view.
func NewView(s *styles.Styles, km *keymap.KeyMap, dashboard driving.DashboardService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		dashboard: dashboard,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts loading the summary.
func (v *View) Init() tea.Cmd {
	v.loading = true
	dashboard := v.dashboard
	ctx := v.ctx
	return func() tea.Msg {
		if dashboard == nil {
			return messages.SummaryLoaded{Err: ErrNoDashboard}
		}
		s, err := dashboard.Summary(ctx)
		return messages.SummaryLoaded{Summary: s, Err: err}
	}
}

// Update handles messages for the summary view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.SummaryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			s := msg.Summary
			v.summary = &s
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
		}
	}
	return v, nil
}

// View renders the summary.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("City Dashboard"))
	b.WriteString("\n\n")

	switch {
	case v.loading && v.summary == nil:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.summary != nil:
		v.renderSummary(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] Refresh  [esc] Back"))
	return b.String()
}

func (v *View) renderSummary(b *strings.Builder) {
	for _, k := range v.summary.KPIs {
		value := v.styles.Muted.Render("n/a")
		if k.Available {
			value = v.styles.Value.Render(fmt.Sprintf("%d", k.Value))
		}
		fmt.Fprintf(b, "  %-26s %s\n", k.Label, value)
	}

	for _, bd := range v.summary.Breakdowns {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render(bd.Label + " by city"))
		b.WriteString("\n")
		if !bd.Available {
			b.WriteString(v.styles.Muted.Render("  unavailable"))
			b.WriteString("\n")
			continue
		}
		if len(bd.Cities) == 0 {
			b.WriteString(v.styles.Muted.Render("  no data"))
			b.WriteString("\n")
			continue
		}
		for i, c := range bd.Cities {
			if i == maxCities {
				fmt.Fprintf(b, "  ... %d more\n", len(bd.Cities)-maxCities)
				break
			}
			fmt.Fprintf(b, "  %-26s %d\n", c.City, c.Count)
		}
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Summary returns the last loaded summary, or nil.
func (v *View) Summary() *domain.Summary {
	return v.summary
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
