package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a free-text question about accidents, traffic, AQI, road damage, crowds or complaints"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	RequestID string   `json:"request_id"`
	Topic     string   `json:"topic"`
	Text      string   `json:"text"`
	State     string   `json:"state"`
	Trail     []string `json:"trail,omitempty"`
	Rows      int      `json:"rows"`
	Delivery  string   `json:"delivery"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask UrbanBot a question about city events. Add 'email' or 'send' to deliver the report.",
	}, s.handleAsk)
}

// handleAsk handles the ask tool invocation.
// A generation failure is reported as a tool error carrying the user-facing text.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, domain.ErrInvalidInput
	}

	answer, err := s.ports.Assistant.Ask(ctx, input.Question)
	output := toAskOutput(answer)

	if err != nil {
		if !errors.Is(err, domain.ErrGenerationFailed) {
			return nil, AskOutput{}, err
		}
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: answer.Text}},
		}, output, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: answer.Text}},
	}, output, nil
}

func toAskOutput(a domain.Answer) AskOutput {
	trail := make([]string, len(a.Trail))
	for i, st := range a.Trail {
		trail[i] = st.String()
	}
	return AskOutput{
		RequestID: a.RequestID,
		Topic:     a.Topic.String(),
		Text:      a.Text,
		State:     a.State.String(),
		Trail:     trail,
		Rows:      a.Rows,
		Delivery:  a.Delivery.String(),
	}
}
