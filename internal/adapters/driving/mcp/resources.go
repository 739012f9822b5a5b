package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for UrbanBot resources.
	uriScheme = "urbanbot://"

	jsonMIME = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "summary",
		Name:        "summary",
		Description: "Dashboard KPIs and per-city breakdowns",
		MIMEType:    jsonMIME,
	}, s.handleSummaryResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "topics",
		Name:        "topics",
		Description: "Topics the assistant recognises, with their keywords and event tables",
		MIMEType:    jsonMIME,
	}, s.handleTopicsResource)
}

// handleSummaryResource returns the dashboard summary.
func (s *Server) handleSummaryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Dashboard == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	summary, err := s.ports.Dashboard.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing summary: %w", err)
	}

	return jsonResult(req.Params.URI, summary)
}

type topicInfo struct {
	Topic    string   `json:"topic"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords,omitempty"`
	Table    string   `json:"table,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// handleTopicsResource lists every topic in classification order.
func (s *Server) handleTopicsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	keywords := make(map[domain.Topic][]string)
	for _, r := range s.ports.rules() {
		keywords[r.Topic] = append(keywords[r.Topic], r.Keywords...)
	}

	topics := make([]topicInfo, 0, len(domain.AllTopics()))
	for _, t := range domain.AllTopics() {
		info := topicInfo{Topic: t.String(), Label: t.Label(), Keywords: keywords[t]}
		if q, ok := domain.EventQueryFor(t); ok {
			info.Table = q.Table
			info.Limit = q.Limit
		}
		topics = append(topics, info)
	}

	return jsonResult(req.Params.URI, topics)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}
