package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/speccover/internal/service"
)

// Server wraps the coverage service with MCP protocol handling.
type Server struct {
	svc     service.Service
	config  Config
	version string
	server  *mcp.Server
}

// New creates a server with every tool and resource registered.
func New(svc service.Service, cfg Config, version string) *Server {
	defaults := DefaultConfig()
	cfg.HistoryPath = coalesce(cfg.HistoryPath, defaults.HistoryPath)
	cfg.ProfilePath = coalesce(cfg.ProfilePath, defaults.ProfilePath)

	s := &Server{svc: svc, config: cfg, version: version}
	s.server = mcp.NewServer(&mcp.Implementation{Name: "speccover", Version: version}, nil)
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "report",
		Description: "Render the configured coverage reports from an existing coverprofile. Console formats are returned in the result.",
	}, s.handleReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "filter",
		Description: "Check which source files the configured include and exclude lists keep.",
	}, s.handleFilter)
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         "speccover://trend",
		Name:        "Coverage Trend",
		Description: "Coverage trend computed from the recorded history",
		MIMEType:    "application/json",
	}, s.handleTrendResource)

	s.server.AddResource(&mcp.Resource{
		URI:         "speccover://config",
		Name:        "Effective Configuration",
		Description: "The listener configuration after defaults are applied",
		MIMEType:    "application/yaml",
	}, s.handleConfigResource)
}
