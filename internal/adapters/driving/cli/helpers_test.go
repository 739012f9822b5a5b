package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

type mockAssistant struct {
	answer    domain.Answer
	err       error
	questions []string
}

func (m *mockAssistant) Ask(_ context.Context, question string) (domain.Answer, error) {
	m.questions = append(m.questions, question)
	a := m.answer
	if a.Text == "" {
		a.Text = "answer to " + question
	}
	return a, m.err
}

type mockDashboard struct {
	summary domain.Summary
	err     error
}

func (m *mockDashboard) Summary(_ context.Context) (domain.Summary, error) {
	return m.summary, m.err
}

type mockSettings struct {
	settings    domain.Settings
	entries     []driving.SettingEntry
	setErr      error
	validateErr error
	set         map[string]string
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Entries() ([]driving.SettingEntry, error) {
	return m.entries, nil
}

func (m *mockSettings) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (m *mockSettings) ValidateLLMConfig(_ context.Context) error {
	return m.validateErr
}

type fakeRuntime struct {
	assistant *mockAssistant
	dashboard *mockDashboard
	closed    bool
}

func (f *fakeRuntime) Assistant() driving.Assistant        { return f.assistant }
func (f *fakeRuntime) Dashboard() driving.DashboardService { return f.dashboard }
func (f *fakeRuntime) MetricsHandler() http.Handler        { return http.NotFoundHandler() }
func (f *fakeRuntime) Rules() []domain.TopicRule           { return domain.DefaultTopicRules() }

func (f *fakeRuntime) WatchPrompts(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeRuntime) Close() error {
	f.closed = true
	return nil
}

// setupTestRuntime installs a fake runtime and restores the previous
// package state on cleanup.
func setupTestRuntime(t *testing.T) *fakeRuntime {
	t.Helper()
	rt := &fakeRuntime{assistant: &mockAssistant{}, dashboard: &mockDashboard{}}

	prevFactory, prevTerminal := runtimeFactory, stdinIsTerminal
	runtimeFactory = func(context.Context) (Runtime, error) { return rt, nil }
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		runtimeFactory = prevFactory
		stdinIsTerminal = prevTerminal
	})
	return rt
}

func setupTestSettings(t *testing.T, s *mockSettings) {
	t.Helper()
	prev := settingsService
	settingsService = s
	t.Cleanup(func() { settingsService = prev })
}

// executeCommand runs the root command with fresh flag values.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
