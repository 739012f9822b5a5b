package mcp

import (
	"context"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// mockAssistant is a mock implementation of driving.Assistant.
type mockAssistant struct {
	answer   domain.Answer
	err      error
	question string
}

func (m *mockAssistant) Ask(_ context.Context, question string) (domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockDashboard is a mock implementation of driving.DashboardService.
type mockDashboard struct {
	summary domain.Summary
	err     error
}

func (m *mockDashboard) Summary(_ context.Context) (domain.Summary, error) {
	return m.summary, m.err
}
