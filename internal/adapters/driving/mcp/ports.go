package mcp

import (
	"github.com/secondbrain-labs/brain/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions and retrieves chunks.
	Query driving.QueryService

	// Inspect lists collections and stored chunks. Optional.
	Inspect driving.InspectService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
