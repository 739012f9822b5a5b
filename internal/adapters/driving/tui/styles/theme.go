// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	// Topics tints the topic badge. Topics without an entry use Muted.
	Topics map[domain.Topic]lipgloss.Color
}

// DefaultTheme is a dark palette with a sky-blue accent.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    "#0EA5E9",
		Secondary:  "#F59E0B",
		Background: "#1E1E2E",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Success:    "#A6E3A1",
		Warning:    "#F9E2AF",
		Error:      "#F38BA8",
		Border:     "#45475A",
		Topics: map[domain.Topic]lipgloss.Color{
			domain.TopicAccident:   "#F38BA8",
			domain.TopicTraffic:    "#FAB387",
			domain.TopicAirQuality: "#94E2D5",
			domain.TopicRoadDamage: "#F9E2AF",
			domain.TopicCrowd:      "#CBA6F7",
			domain.TopicComplaint:  "#89B4FA",
		},
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// UserLabel and BotLabel prefix transcript turns.
	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style

	// Value highlights dashboard figures.
	Value lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	bordered := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme:      theme,
		Title:      fg(theme.Primary).Bold(true),
		Subtitle:   fg(theme.Secondary).Bold(true),
		Normal:     fg(theme.Foreground),
		Muted:      fg(theme.Muted),
		Selected:   fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Error:      fg(theme.Error),
		Success:    fg(theme.Success),
		Warning:    fg(theme.Warning),
		InputField: bordered.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(lipgloss.Color("#181825")).Padding(0, 1),
		Help:       fg(theme.Muted),
		Border:     bordered,
		UserLabel:  fg(theme.Secondary).Bold(true),
		BotLabel:   fg(theme.Primary).Bold(true),
		Value:      fg(theme.Success).Bold(true),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}

// TopicBadge renders a topic label in its palette colour.
func (s *Styles) TopicBadge(t domain.Topic) string {
	c, ok := s.theme.Topics[t]
	if !ok {
		c = s.theme.Muted
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(string(t))
}

// Delivery renders the e-mail outcome of an answer. It is empty when
// delivery was not requested.
func (s *Styles) Delivery(d domain.DeliveryStatus) string {
	switch d {
	case domain.DeliverySent:
		return s.Success.Render("report emailed")
	case domain.DeliveryFailed:
		return s.Error.Render("email failed")
	default:
		return ""
	}
}
