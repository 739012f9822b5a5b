// Package messages holds the tea.Msg types passed between the TUI views.
// Results of background commands carry their error alongside the value.
package messages

import (
	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

// ViewType names a screen.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewChat
	ViewSummary
	ViewSettings
	ViewHelp
)

var viewNames = [...]string{"menu", "chat", "summary", "settings", "help"}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged switches the active screen.
type ViewChanged struct {
	View ViewType
}

// AnswerReceived completes an Ask. Answer.Text is set even when Err is
// non-nil, so the chat always has something to show.
type AnswerReceived struct {
	Answer domain.Answer
	Err    error
}

type SummaryLoaded struct {
	Summary domain.Summary
	Err     error
}

// SettingsLoaded carries the resolved configuration, secrets masked.
type SettingsLoaded struct {
	Entries []driving.SettingEntry
	Err     error
}

// LLMValidated reports a provider ping started from the settings view.
type LLMValidated struct {
	Err error
}

// ErrorOccurred reports a failure outside the typed results above.
type ErrorOccurred struct {
	Err error
}

// Quit ends the program.
type Quit struct{}
