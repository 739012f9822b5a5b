package services

import "github.com/custodia-labs/urbanbot/internal/core/domain"

// ReportComposer frames completions as reports. It is deterministic and has no side effects.
type ReportComposer struct{}

// NewReportComposer creates a report composer.
func NewReportComposer() *ReportComposer {
	return &ReportComposer{}
}

// Compose wraps the completion, unaltered, under the topic's report heading.
func (ReportComposer) Compose(topic domain.Topic, generated string) domain.Report {
	return domain.NewReport(topic, generated)
}
