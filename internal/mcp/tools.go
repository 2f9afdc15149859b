package mcp

import (
	"bytes"
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/speccover/internal/service"
)

func (s *Server) handleReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReportInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	var console bytes.Buffer
	err := s.svc.Report(ctx, service.ReportOptions{
		Out:        &console,
		ConfigPath: coalesce(input.ConfigPath, s.config.ConfigPath),
		Profile:    coalesce(input.Profile, s.config.ProfilePath),
		Label:      input.Label,
		Verbose:    true,
		NoCoverage: input.NoCoverage,
	})

	output := ReportOutput{
		Passed:  err == nil,
		Console: strings.TrimSpace(console.String()),
	}
	if err != nil {
		output.Error = err.Error()
		output.Summary = "Report generation failed"
	} else {
		output.Summary = "Reports rendered"
	}
	return nil, output, nil
}

func (s *Server) handleFilter(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FilterInput,
) (*mcp.CallToolResult, FilterOutput, error) {
	results, active, err := s.svc.Filter(ctx, service.FilterOptions{
		ConfigPath: coalesce(input.ConfigPath, s.config.ConfigPath),
		Paths:      input.Paths,
	})
	if err != nil {
		return nil, FilterOutput{Error: err.Error()}, nil
	}

	output := FilterOutput{Active: active, Files: make([]FileVerdict, 0, len(results))}
	for _, r := range results {
		output.Files = append(output.Files, FileVerdict{Path: r.Path, Included: r.Included})
	}
	return nil, output, nil
}
