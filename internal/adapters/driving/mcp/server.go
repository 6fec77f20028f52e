package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/secondbrain-labs/brain/internal/logger"
)

// ServerName is reported to clients during initialisation.
const ServerName = "brain"

// Instructions tells clients how the tools relate to each other.
const Instructions = `Answers questions from documents indexed with 'brain init'.
Use search to see which chunks match a query without calling the language model.
Use ask to get an answer generated from the closest chunks; its sources are the
same results search would return. Read brain://collections to see what is indexed.`

// shutdownTimeout bounds how long in-flight HTTP requests may finish.
const shutdownTimeout = 5 * time.Second

// Server exposes the query and inspect services of one collection over MCP.
type Server struct {
	ports   *Ports
	version string
	server  *mcp.Server
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// NewServer registers the search and ask tools and the collection
// resources. ports.Query is required.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(
		&mcp.Implementation{Name: ServerName, Version: s.version},
		&mcp.ServerOptions{Instructions: Instructions},
	)
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves one client over stdin and stdout until ctx is cancelled or
// the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("MCP server %s %s on stdio", ServerName, s.version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled. Cancellation is a clean stop and returns nil.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP server %s %s on %s", ServerName, s.version, addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
