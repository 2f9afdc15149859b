package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/config"
)

func (s *Server) handleTrendResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	h, err := s.svc.History(ctx, s.config.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	out := TrendOutput{Trend: h.Trend(), Latest: h.LatestEntry(), Entries: h.Entries}
	if out.Entries == nil {
		out.Entries = []domain.HistoryEntry{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trend: %w", err)
	}
	return textResource(req, "application/json", data), nil
}

// handleConfigResource serves the config file merged over defaults, or
// the defaults alone when no file exists.
func (s *Server) handleConfigResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	loader := config.Loader{}
	path := configPathOrDefault(s.config.ConfigPath)
	cfg := application.Config{Text: application.DefaultTextOptions()}

	ok, err := loader.Exists(path)
	if err != nil {
		return nil, err
	}
	if ok {
		if cfg, err = loader.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if s.config.ConfigPath != "" {
		return nil, fmt.Errorf("%w: %s", application.ErrConfigNotFound, path)
	}

	var buf bytes.Buffer
	if err := config.Write(&buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return textResource(req, "application/yaml", buf.Bytes()), nil
}

func textResource(req *mcp.ReadResourceRequest, mime string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: mime,
			Text:     string(data),
		}},
	}
}
