// Package mcp provides an MCP (Model Context Protocol) server adapter for brain.
// It lets AI assistants search and question the user's indexed documents.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
