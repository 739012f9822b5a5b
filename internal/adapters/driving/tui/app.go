package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/urbanbot/internal/adapters/driving/tui/views/summary"
)

// App owns the four screens and routes messages to whichever is active.
// Replies from background commands reach their view even when another
// view is showing.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	menuView     *menu.View
	chatView     *chat.View
	summaryView  *summary.View
	settingsView *settings.View

	currentView messages.ViewType
	err         error // last failure a view reported

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp validates ports and builds every view up front. startView is the
// first screen shown.
func NewApp(ports *Ports, startView messages.ViewType) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keys:         km,
		menuView:     menu.NewView(s, km),
		chatView:     chat.NewView(s, km, ports.Assistant),
		summaryView:  summary.NewView(s, km, ports.Dashboard),
		settingsView: settings.NewView(s, km, ports.Settings),
		currentView:  startView,
	}, nil
}

// WithContext sets the context used for questions and summaries; cancelling
// it also stops the program.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.summaryView.WithContext(ctx)
	a.settingsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("UrbanBot"),
		a.initView(a.currentView),
	)
}

func (a *App) initView(view messages.ViewType) tea.Cmd {
	switch view {
	case messages.ViewChat:
		return a.chatView.Init()
	case messages.ViewSummary:
		return a.summaryView.Init()
	case messages.ViewSettings:
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp:
	}
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// ctrl+c quits from anywhere; q only from the menu.
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, a.initView(msg.View)

	case messages.AnswerReceived:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.SummaryLoaded:
		a.summaryView, cmd = a.summaryView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.LLMValidated:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewChat {
			a.chatView, cmd = a.chatView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward routes a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewSummary:
		a.summaryView, cmd = a.summaryView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewSummary:
		return a.summaryView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// helpColumns titles the groups returned by KeyMap.FullHelp.
var helpColumns = []string{"Lists", "Chat", "General"}

func (a *App) viewHelp() string {
	keyCol := lipgloss.NewStyle().Width(8)
	cols := make([]string, 0, len(helpColumns))
	for i, group := range a.keys.FullHelp() {
		lines := []string{a.styles.Subtitle.Render(helpColumns[i])}
		for _, b := range group {
			h := b.Help()
			lines = append(lines, keyCol.Render(h.Key)+" "+h.Desc)
		}
		cols = append(cols, lipgloss.NewStyle().PaddingRight(4).Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Help"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		"",
		a.styles.Muted.Render(`Mention "email" or "send" in a question to have the report e-mailed.`),
		a.styles.Muted.Render("In Settings, v checks the LLM provider."),
		"",
		a.styles.Help.Render("[esc] back to menu"),
	)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

func (a *App) Err() error {
	return a.err
}

// Ready reports whether a window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions resizes every view, not just the active one.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.summaryView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
