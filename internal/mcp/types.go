// Package mcp exposes speccover over the Model Context Protocol.
package mcp

import (
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/config"
)

// Config holds MCP server configuration.
type Config struct {
	ConfigPath  string // empty uses .speccover.yaml when present
	HistoryPath string
	ProfilePath string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() Config {
	return Config{
		ConfigPath:  "",
		HistoryPath: ".speccover/history.json",
		ProfilePath: "coverage.out",
	}
}

// ReportInput defines the input parameters for the report tool.
type ReportInput struct {
	ConfigPath string `json:"configPath,omitempty" jsonschema:"path to the speccover config file"`
	Profile    string `json:"profile,omitempty" jsonschema:"path to an existing coverprofile"`
	Label      string `json:"label,omitempty" jsonschema:"example label recorded for the profile"`
	NoCoverage bool   `json:"noCoverage,omitempty" jsonschema:"skip report generation"`
}

// FilterInput defines the input parameters for the filter tool.
type FilterInput struct {
	ConfigPath string   `json:"configPath,omitempty" jsonschema:"path to the speccover config file"`
	Paths      []string `json:"paths" jsonschema:"source files to check against the filter"`
}

// ReportOutput is returned by the report tool.
type ReportOutput struct {
	Passed  bool   `json:"passed"`
	Summary string `json:"summary,omitempty"`
	Console string `json:"console,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FileVerdict tells whether one path survives the filter.
type FileVerdict struct {
	Path     string `json:"path"`
	Included bool   `json:"included"`
}

// FilterOutput is returned by the filter tool.
type FilterOutput struct {
	Active bool          `json:"active"`
	Files  []FileVerdict `json:"files,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// TrendOutput is served by the trend resource.
type TrendOutput struct {
	Trend   domain.Trend          `json:"trend"`
	Latest  *domain.HistoryEntry  `json:"latest,omitempty"`
	Entries []domain.HistoryEntry `json:"entries"`
}

func coalesce(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func configPathOrDefault(path string) string {
	return coalesce(path, config.DefaultPath)
}
