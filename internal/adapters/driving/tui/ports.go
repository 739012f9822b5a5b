// Package tui provides an interactive terminal chat for UrbanBot.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers chat questions.
	Assistant driving.Assistant

	// Dashboard provides the summary view. Optional.
	Dashboard driving.DashboardService

	// Settings backs the read-only settings view. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	assistant driving.Assistant,
	dashboard driving.DashboardService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Assistant: assistant,
		Dashboard: dashboard,
		Settings:  settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
