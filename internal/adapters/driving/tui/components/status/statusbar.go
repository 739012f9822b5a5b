// Package status renders the one-line bar under the chat transcript.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateHelp     State = "help"
	StateAnswered State = "answered"
)

// Bar is passive; views push state into it through the setters.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	topic    domain.Topic
	delivery domain.DeliveryStatus
	turns    int
	width    int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

func (s *Bar) Init() tea.Cmd {
	return nil
}

func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View pads between the status and the key hints so the bar spans the width.
func (s *Bar) View() string {
	left, right := s.status(), s.hints()
	gap := max(1, s.width-lipgloss.Width(left)-lipgloss.Width(right))
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) status() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateAnswered:
		parts := []string{s.styles.Normal.Render(fmt.Sprintf("%d turns", s.turns))}
		if s.topic != "" {
			parts = append(parts, s.styles.Normal.Render("topic: ")+s.styles.TopicBadge(s.topic))
		}
		if d := s.styles.Delivery(s.delivery); d != "" {
			parts = append(parts, d)
		} else if s.message != "" {
			parts = append(parts, s.styles.Normal.Render(s.message))
		}
		return strings.Join(parts, s.styles.Muted.Render(" | "))
	}
	if s.message != "" {
		return s.styles.Muted.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) hints() string {
	bindings := s.keymap.ChatHelp()
	if s.state == StateHelp {
		bindings = s.keymap.ShortHelp()
	}
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = formatHint(b)
	}
	return s.styles.Muted.Render(strings.Join(out, " | "))
}

func formatHint(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}

func (s *Bar) SetState(state State) {
	s.state = state
}

func (s *Bar) State() State {
	return s.state
}

// SetMessage sets free text shown when no delivery outcome applies.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

func (s *Bar) Message() string {
	return s.message
}

// SetAnswer records the topic and delivery outcome of the latest answer.
func (s *Bar) SetAnswer(topic domain.Topic, delivery domain.DeliveryStatus) {
	s.topic = topic
	s.delivery = delivery
}

func (s *Bar) Topic() domain.Topic {
	return s.topic
}

func (s *Bar) Delivery() domain.DeliveryStatus {
	return s.delivery
}

func (s *Bar) SetTurns(n int) {
	s.turns = n
}

func (s *Bar) Turns() int {
	return s.turns
}

func (s *Bar) SetWidth(width int) {
	s.width = width
}

func (s *Bar) Width() int {
	return s.width
}

// Clear returns the bar to its initial state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.topic = ""
	s.delivery = ""
	s.turns = 0
}
