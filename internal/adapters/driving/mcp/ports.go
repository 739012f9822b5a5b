package mcp

import (
	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers questions.
	Assistant driving.Assistant

	// Dashboard computes the headline counters. Optional.
	Dashboard driving.DashboardService

	// Rules is the classifier rule table exposed as a resource.
	// Defaults to domain.DefaultTopicRules.
	Rules []domain.TopicRule

	// Version is reported to clients during initialisation.
	Version string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}

func (p *Ports) rules() []domain.TopicRule {
	if len(p.Rules) > 0 {
		return p.Rules
	}
	return domain.DefaultTopicRules()
}

func (p *Ports) version() string {
	if p.Version == "" {
		return "dev"
	}
	return p.Version
}
