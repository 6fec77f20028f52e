package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for brain resources.
	uriScheme = "brain://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Collections in the index with chunk counts",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chunks",
		Name:        "chunks",
		Description: "Every chunk of the active collection, without embeddings",
		MIMEType:    "application/json",
	}, s.handleChunksResource)
}

// handleCollectionsResource lists all collections.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Inspect == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	collections, err := s.ports.Inspect.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	type collectionInfo struct {
		Name       string `json:"name"`
		Dimension  int    `json:"dimension"`
		ChunkCount int    `json:"chunk_count"`
	}

	infos := make([]collectionInfo, len(collections))
	for i, c := range collections {
		infos[i] = collectionInfo{
			Name:       c.Name,
			Dimension:  c.Dimension,
			ChunkCount: c.ChunkCount,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling collections: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleChunksResource dumps the active collection.
func (s *Server) handleChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Inspect == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	dump, err := s.ports.Inspect.Dump(ctx)
	if err != nil {
		return nil, fmt.Errorf("dumping chunks: %w", err)
	}

	type chunkInfo struct {
		ID       string         `json:"id"`
		Text     string         `json:"text"`
		Metadata map[string]any `json:"metadata"`
	}

	infos := make([]chunkInfo, dump.Len())
	for i := range infos {
		infos[i] = chunkInfo{
			ID:       dump.IDs[i],
			Text:     dump.Texts[i],
			Metadata: dump.Metadatas[i],
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling chunks: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}
