package chat

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

type stubAssistant struct {
	answer    domain.Answer
	err       error
	questions []string
}

func (s *stubAssistant) Ask(_ context.Context, question string) (domain.Answer, error) {
	s.questions = append(s.questions, question)
	return s.answer, s.err
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// send types a question, presses enter and feeds the reply back.
func send(t *testing.T, v *View, question string) tea.Msg {
	t.Helper()
	typeText(v, question)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(msg)
	return msg
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &stubAssistant{})

	require.NotNil(t, v)
	assert.Empty(t, v.History())
	assert.False(t, v.Pending())
	assert.NotNil(t, v.Init())
}

func TestView_SendQuestion(t *testing.T) {
	assistant := &stubAssistant{answer: domain.Answer{
		Topic:    domain.TopicAccident,
		Text:     "🚨 Accident Report\n\nTwo crashes in Pune.",
		State:    domain.StateDone,
		Delivery: domain.DeliveryNotRequested,
	}}
	v := NewView(nil, nil, assistant)
	v.SetDimensions(100, 30)

	msg := send(t, v, "any accidents?")

	_, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, []string{"any accidents?"}, assistant.questions)

	history := v.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: "any accidents?"}, history[0])
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Contains(t, history[1].Content, "Two crashes")

	assert.False(t, v.Pending())
	assert.Equal(t, status.StateAnswered, v.statusbar.State())
	assert.Equal(t, domain.TopicAccident, v.statusbar.Topic())
	assert.Equal(t, 2, v.statusbar.Turns())
	assert.Equal(t, "", v.input.Value())
	assert.Contains(t, v.View(), "Two crashes")
}

func TestView_EachQuestionIsIndependent(t *testing.T) {
	assistant := &stubAssistant{answer: domain.Answer{Text: "ok", State: domain.StateDone}}
	v := NewView(nil, nil, assistant)

	send(t, v, "first")
	send(t, v, "second")

	assert.Equal(t, []string{"first", "second"}, assistant.questions)
	assert.Len(t, v.History(), 4)
}

func TestView_GenerationFailure(t *testing.T) {
	assistant := &stubAssistant{
		answer: domain.Answer{Text: domain.GenerationFailedMessage, State: domain.StateGenerationFailed},
		err:    fmt.Errorf("%w: quota", domain.ErrGenerationFailed),
	}
	v := NewView(nil, nil, assistant)

	send(t, v, "hello")

	history := v.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.GenerationFailedMessage, history[1].Content)
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.ErrorIs(t, v.Err(), domain.ErrGenerationFailed)
}

func TestView_DeliveryStatus(t *testing.T) {
	tests := []struct {
		name     string
		delivery domain.DeliveryStatus
		shown    string
	}{
		{"sent", domain.DeliverySent, "report emailed"},
		{"failed", domain.DeliveryFailed, "email failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assistant := &stubAssistant{answer: domain.Answer{
				Topic: domain.TopicTraffic, Text: "report", Delivery: tt.delivery,
			}}
			v := NewView(nil, nil, assistant)

			v.SetDimensions(160, 30)

			send(t, v, "send traffic report")

			assert.Equal(t, tt.delivery, v.statusbar.Delivery())
			assert.Contains(t, v.statusbar.View(), tt.shown)
		})
	}
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	assistant := &stubAssistant{}
	v := NewView(nil, nil, assistant)

	typeText(v, "   ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, v.History())
	assert.Empty(t, assistant.questions)
}

func TestView_IgnoresSubmitWhilePending(t *testing.T) {
	v := NewView(nil, nil, &stubAssistant{})

	typeText(v, "first")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())

	typeText(v, "second")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Len(t, v.History(), 1)
	assert.Contains(t, v.View(), "thinking")
}

func TestView_NilAssistant(t *testing.T) {
	v := NewView(nil, nil, nil)

	msg := send(t, v, "hello")

	errMsg, ok := msg.(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, ErrNoAssistant)
	assert.False(t, v.Pending())
	assert.Equal(t, status.StateError, v.statusbar.State())
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := NewView(nil, nil, &stubAssistant{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_ClearHistory(t *testing.T) {
	v := NewView(nil, nil, &stubAssistant{answer: domain.Answer{Text: "ok"}})
	send(t, v, "hello")
	require.Len(t, v.History(), 2)

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Empty(t, v.History())
	assert.Equal(t, status.StateReady, v.statusbar.State())
}

func TestView_HistoryIsCopied(t *testing.T) {
	v := NewView(nil, nil, &stubAssistant{answer: domain.Answer{Text: "ok"}})
	send(t, v, "hello")

	h := v.History()
	h[0].Content = "changed"

	assert.Equal(t, "hello", v.History()[0].Content)
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, nil, &stubAssistant{})

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, v.ready)
	assert.Equal(t, 120, v.transcript.Width)
	assert.Equal(t, 40-chromeHeight, v.transcript.Height)
	assert.Equal(t, 120, v.statusbar.Width())
}

func TestView_EmptyTranscriptShowsHint(t *testing.T) {
	v := NewView(nil, nil, &stubAssistant{})

	assert.Contains(t, v.View(), "UrbanBot Chat")
	assert.Contains(t, v.View(), "road damage")
}
