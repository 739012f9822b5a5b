// Package mcp provides an MCP (Model Context Protocol) server adapter for UrbanBot.
// It lets AI assistants ask city questions and read the dashboard summary.
package mcp

import "errors"

// ErrMissingAssistant is returned when the assistant service is not provided.
var ErrMissingAssistant = errors.New("mcp: assistant service is required")
