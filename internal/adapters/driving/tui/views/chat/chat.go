// Package chat provides the conversation view for the TUI.
// The view owns the conversation history; each question is sent to the
// assistant on its own, without prior turns.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

// ErrNoAssistant is returned when a question is sent without an assistant.
var ErrNoAssistant = errors.New("chat: assistant not configured")

// chromeHeight is the number of lines used by title, input and status bar.
const chromeHeight = 7

// View is the chat view: transcript, question input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	statusbar  *status.Bar

	assistant driving.Assistant
	ctx       context.Context

	history []domain.Turn
	pending bool
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, assistant driving.Assistant) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 24-chromeHeight),
		statusbar:  status.NewBar(s, km),
		assistant:  assistant,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
	v.refresh()
	return v
}

// WithContext sets the context passed to the assistant.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(keyStr, v.keymap.Clear):
		v.Reset()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.Send):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit records the user's turn and asks the assistant.
// A question typed while another is in flight is ignored.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return nil
	}

	v.history = append(v.history, domain.Turn{Role: domain.RoleUser, Content: question})
	v.input.Reset()
	v.pending = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.refresh()

	assistant := v.assistant
	ctx := v.ctx
	return func() tea.Msg {
		if assistant == nil {
			return messages.ErrorOccurred{Err: ErrNoAssistant}
		}
		answer, err := assistant.Ask(ctx, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false

	text := msg.Answer.Text
	if text == "" && msg.Err != nil {
		text = msg.Err.Error()
	}
	v.history = append(v.history, domain.Turn{Role: domain.RoleAssistant, Content: text})
	v.statusbar.SetTurns(len(v.history))
	v.statusbar.SetAnswer(msg.Answer.Topic, msg.Answer.Delivery)

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.statusbar.SetState(status.StateAnswered)
		v.statusbar.SetMessage("")
	}
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the latest turn.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.history) == 0 {
		return v.styles.Muted.Render("Ask about accidents, traffic, AQI, road damage, crowds or complaints.\n" +
			"Include \"email\" or \"send\" to have the report e-mailed.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	var b strings.Builder
	for i, turn := range v.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if turn.Role == domain.RoleUser {
			b.WriteString(v.styles.UserLabel.Render("You"))
		} else {
			b.WriteString(v.styles.BotLabel.Render("UrbanBot"))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render(turn.Content))
	}
	if v.pending {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("UrbanBot is thinking..."))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("UrbanBot Chat"))
	b.WriteString("\n\n")
	b.WriteString(v.transcript.View())
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions resizes the transcript, input and status bar.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.transcript.Width = width
	v.transcript.Height = max(height-chromeHeight, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Reset clears the conversation.
func (v *View) Reset() {
	v.history = nil
	v.pending = false
	v.err = nil
	v.input.Reset()
	v.statusbar.Clear()
	v.refresh()
}

// History returns a copy of the conversation so far.
func (v *View) History() []domain.Turn {
	out := make([]domain.Turn, len(v.history))
	copy(out, v.history)
	return out
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
