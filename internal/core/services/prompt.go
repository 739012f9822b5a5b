package services

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// DefaultGroundingPrompt is the built-in preamble. %s receives the question.
const DefaultGroundingPrompt = `You are UrbanBot AI Assistant.

Answer clearly and professionally.

User Question:
%s`

const contextHeading = "\n\nDatabase Context:\n"

// PromptBuilder renders grounding prompts.
type PromptBuilder struct {
	promptStore driven.PromptStore
}

// Ensure PromptBuilder can use custom prompts.
var _ driven.PromptStoreAware = (*PromptBuilder)(nil)

// NewPromptBuilder creates a prompt builder using the built-in preamble.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (b *PromptBuilder) SetPromptStore(store driven.PromptStore) {
	b.promptStore = store
}

// Build renders the preamble with the question verbatim, then, only when
// records is non-empty, a Database Context section holding one header line
// with the topic's columns and one line per record in the given order.
func (b *PromptBuilder) Build(question string, topic domain.Topic, records []domain.EventRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, b.template(), question)

	if len(records) == 0 {
		return sb.String()
	}

	var columns []string
	if q, ok := domain.EventQueryFor(topic); ok {
		columns = q.Columns
	}

	sb.WriteString(contextHeading)
	sb.WriteString(renderTable(columns, records))
	return sb.String()
}

// template returns the user-customised preamble when it is usable.
func (b *PromptBuilder) template() string {
	if b.promptStore == nil {
		return DefaultGroundingPrompt
	}
	tmpl, err := b.promptStore.Load(driven.PromptGrounding)
	if err != nil {
		logger.Warn("load grounding prompt: %v", err)
		return DefaultGroundingPrompt
	}
	if strings.Count(tmpl, "%s") != 1 || strings.Count(tmpl, "%") != 1 {
		logger.Warn("grounding prompt must contain exactly one %%s placeholder, using default")
		return DefaultGroundingPrompt
	}
	return tmpl
}

// renderTable aligns cells on whitespace. Header is omitted when columns is empty.
func renderTable(columns []string, records []domain.EventRecord) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	if len(columns) > 0 {
		fmt.Fprintln(tw, strings.Join(columns, "\t"))
	}
	for _, r := range records {
		cells := make([]string, len(r.Values))
		for i, v := range r.Values {
			cells[i] = flattenCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()

	return strings.TrimRight(sb.String(), "\n")
}

func flattenCell(v string) string {
	v = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(v)
	if v == "" {
		return "-"
	}
	return v
}
